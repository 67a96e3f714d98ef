package session

// Outcome 事件处理结果；Status 为失败或无变化时的简短说明
type Outcome struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
}

func ok() Outcome { return Outcome{OK: true} }

func failed(status string) Outcome { return Outcome{Status: status} }

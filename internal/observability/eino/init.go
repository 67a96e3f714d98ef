package eino

import (
	"sync/atomic"

	einocallbacks "github.com/cloudwego/eino/callbacks"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
)

var registered atomic.Bool

// Init 注册模型调用的全局回调，重复调用无副作用
func Init() {
	if !registered.CompareAndSwap(false, true) {
		return
	}
	einocallbacks.AppendGlobalHandlers(
		cbtemplate.NewHandlerHelper().ChatModel(newChatModelCallbackHandler()).Handler(),
	)
}

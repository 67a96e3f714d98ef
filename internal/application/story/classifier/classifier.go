// Package classifier 判断生成文本是否为故事正文，并抽取正文部分
//
// 判定由一组有序规则完成：前置规则对文本做裁剪，后续规则可以否决；
// 第一条作出否决的规则即为最终结论，规则顺序不可随意调整。
package classifier

import (
	"regexp"
	"strings"
)

// Step 单条规则的处理结果
type Step int

const (
	// Continue 交给下一条规则
	Continue Step = iota
	// Reject 判定为非故事内容
	Reject
	// Accept 判定为故事正文
	Accept
)

// Rule 命名的判定规则，返回（可能被裁剪的）文本与处理结果
type Rule struct {
	Name  string
	Apply func(text string) (string, Step)
}

// Result 分类结论
type Result struct {
	IsStory bool
	// Text 抽取出的正文，非故事时为空
	Text string
	// DecidedBy 作出结论的规则名
	DecidedBy string
}

// Classifier 规则流水线
type Classifier struct {
	rules []Rule
}

// New 使用给定规则创建分类器，未传入时使用默认规则
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

var defaultClassifier = New()

// Classify 使用默认规则分类
func Classify(text string) (bool, string) {
	r := defaultClassifier.Classify(text)
	return r.IsStory, r.Text
}

// Classify 依次执行规则，任何规则都未作结论时视为非故事
func (c *Classifier) Classify(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{DecidedBy: RuleEmpty}
	}

	current := text
	for _, rule := range c.rules {
		next, step := rule.Apply(current)
		switch step {
		case Reject:
			return Result{DecidedBy: rule.Name}
		case Accept:
			return Result{IsStory: true, Text: normalizeWhitespace(next), DecidedBy: rule.Name}
		}
		current = next
	}
	return Result{DecidedBy: "exhausted"}
}

// 规则名
const (
	RuleStripPreamble        = "strip_preamble"
	RuleTruncateEngagement   = "truncate_engagement"
	RuleEmpty                = "empty"
	RuleConfirmationPrefix   = "confirmation_prefix"
	RuleShortOrInterrogative = "short_or_interrogative"
	RuleLingeringQuestion    = "lingering_question"
	RuleAccept               = "accept"
)

// DefaultRules 返回默认规则，顺序即判定优先级
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleStripPreamble, Apply: StripPreamble},
		{Name: RuleTruncateEngagement, Apply: TruncateEngagement},
		{Name: RuleEmpty, Apply: RejectEmpty},
		{Name: RuleConfirmationPrefix, Apply: RejectConfirmation},
		{Name: RuleShortOrInterrogative, Apply: RejectShortOrInterrogative},
		{Name: RuleLingeringQuestion, Apply: RejectLingeringQuestion},
		{Name: RuleAccept, Apply: func(text string) (string, Step) { return text, Accept }},
	}
}

var preambles = compileAll(
	`alright, let's get started with the story!`,
	`alright, let's start the story with the first slide\.`,
	`here's the first slide:`,
	`here's the next slide:`,
	`continuing with the story\.\.\.`,
	`slide \d+:`,
)

// StripPreamble 去掉开头的引导语，只处理第一个匹配的引导语
func StripPreamble(text string) (string, Step) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	for _, re := range preambles {
		loc := re.FindStringIndex(trimmed)
		if loc != nil && loc[0] == 0 {
			return strings.TrimSpace(trimmed[loc[1]:]), Continue
		}
	}
	return strings.TrimSpace(text), Continue
}

var engagementPhrases = compileAll(
	`\(word count: approximately \d+\)`,
	`how was that\?`,
	`are you happy with this slide`,
	`would you like to change, add, or update anything`,
	`would you like me to continue`,
	`would you like to interact`,
	`would you like any modifications`,
	`shall i continue`,
	`should i continue`,
	`what do you think`,
	`before i continue`,
	`let me know`,
)

// TruncateEngagement 在最早出现的追问语处截断
func TruncateEngagement(text string) (string, Step) {
	cut := len(text)
	for _, re := range engagementPhrases {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] < cut {
			cut = loc[0]
		}
	}
	if cut < len(text) {
		return strings.TrimSpace(text[:cut]), Continue
	}
	return text, Continue
}

// RejectEmpty 裁剪后为空则否决
func RejectEmpty(text string) (string, Step) {
	if strings.TrimSpace(text) == "" {
		return text, Reject
	}
	return text, Continue
}

var confirmationStarts = []string{
	"✅", "ok,", "alright,", "great,", "i see", "perfect!", "understood.", "sounds good.", "sure,",
}

// RejectConfirmation 以确认语开头的是应答而非正文
func RejectConfirmation(text string) (string, Step) {
	lower := strings.ToLower(text)
	for _, start := range confirmationStarts {
		if strings.HasPrefix(lower, start) {
			return text, Reject
		}
	}
	return text, Continue
}

const minStoryWords = 15

// RejectShortOrInterrogative 过短且带问号或不足两句的文本否决
func RejectShortOrInterrogative(text string) (string, Step) {
	if len(strings.Fields(text)) >= minStoryWords {
		return text, Continue
	}
	if strings.Contains(text, "?") || sentenceStops(text) <= 1 {
		return text, Reject
	}
	return text, Continue
}

// sentenceStops 统计句号，连续的点（省略号）只计一次
func sentenceStops(text string) int {
	n := 0
	prevDot := false
	for _, r := range text {
		if r == '.' {
			if !prevDot {
				n++
			}
			prevDot = true
			continue
		}
		prevDot = false
	}
	return n
}

var lingeringPhrases = []string{"would you like", "shall i", "how was that"}

const lingeringWindow = 50

// RejectLingeringQuestion 结尾 50 个字符内仍有追问且以问号结束时否决
func RejectLingeringQuestion(text string) (string, Step) {
	lower := strings.ToLower(text)
	if !strings.HasSuffix(lower, "?") {
		return text, Continue
	}
	tail := lower
	if r := []rune(lower); len(r) > lingeringWindow {
		tail = string(r[len(r)-lingeringWindow:])
	}
	for _, phrase := range lingeringPhrases {
		if strings.Contains(tail, phrase) {
			return text, Reject
		}
	}
	return text, Continue
}

// normalizeWhitespace 合并行内连续空白并去掉首尾空白，段落之间最多保留一个空行
func normalizeWhitespace(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Package character 生成与描述故事角色档案
package character

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"story-weaver-api/internal/domain/entity"
	apperrors "story-weaver-api/pkg/errors"
)

// DefaultRole 未指定身份时的角色定位
const DefaultRole = "character"

const autoTraitCount = 3

// ErrEmptyName 角色名为空
var ErrEmptyName = apperrors.New(apperrors.CodeValidationFailed, "character name is required")

var (
	traitsPool = []string{
		"brave", "cunning", "loyal", "ambitious", "empathetic", "stoic", "charming",
		"rebellious", "curious", "mysterious", "hot-headed", "wise", "sarcastic",
		"calm under pressure", "dreamy", "vengeful", "nurturing",
	}
	goalsPool = []string{
		"protect the kingdom", "uncover a hidden truth", "seek revenge", "restore balance",
		"find a lost artifact", "earn redemption", "prove their worth", "break a family curse",
		"reunite with a lost love", "gain ultimate power", "escape a prophecy",
		"solve a centuries-old mystery",
	}
	conflictsPool = []string{
		"fear of failure", "struggles with identity", "past betrayal", "moral dilemma",
		"unresolved guilt", "conflicting loyalties", "haunted by a dark secret",
		"desperate for approval", "trauma from the past", "resentment toward authority",
	}
)

// TraitsPool 返回特质候选池副本
func TraitsPool() []string { return append([]string(nil), traitsPool...) }

// GoalsPool 返回目标候选池副本
func GoalsPool() []string { return append([]string(nil), goalsPool...) }

// ConflictsPool 返回内心冲突候选池副本
func ConflictsPool() []string { return append([]string(nil), conflictsPool...) }

// Option 生成角色时的可选字段
type Option func(*entity.CharacterProfile)

// WithTraits 指定特质
func WithTraits(traits ...string) Option {
	return func(p *entity.CharacterProfile) {
		p.Traits = append([]string(nil), traits...)
	}
}

// WithGoal 指定目标
func WithGoal(goal string) Option {
	return func(p *entity.CharacterProfile) { p.Goal = goal }
}

// WithConflict 指定内心冲突
func WithConflict(conflict string) Option {
	return func(p *entity.CharacterProfile) { p.InternalConflict = conflict }
}

// Generator 角色档案生成器，未指定的字段从固定候选池随机补齐
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator 创建生成器，rng 为 nil 时使用基于时间的随机源
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Generator{rng: rng}
}

// Generate 生成角色档案，name 为空时返回 ErrEmptyName
func (g *Generator) Generate(name, role string, opts ...Option) (entity.CharacterProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.CharacterProfile{}, ErrEmptyName
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = DefaultRole
	}

	p := entity.CharacterProfile{Name: name, Role: role}
	for _, opt := range opts {
		opt(&p)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(p.Traits) == 0 {
		p.Traits = g.sample(traitsPool, autoTraitCount)
	}
	if strings.TrimSpace(p.Goal) == "" {
		p.Goal = goalsPool[g.rng.IntN(len(goalsPool))]
	}
	if strings.TrimSpace(p.InternalConflict) == "" {
		p.InternalConflict = conflictsPool[g.rng.IntN(len(conflictsPool))]
	}
	return p, nil
}

// sample 不放回抽取 n 个元素
func (g *Generator) sample(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, idx := range g.rng.Perm(len(pool))[:n] {
		out = append(out, pool[idx])
	}
	return out
}

// Describe 渲染角色的一句话简介，缺失字段使用占位词
func Describe(p entity.CharacterProfile) string {
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Role) == "" && len(p.Traits) == 0 &&
		strings.TrimSpace(p.Goal) == "" && strings.TrimSpace(p.InternalConflict) == "" {
		return "Invalid agent data provided."
	}

	traits := "not specified"
	if len(p.Traits) > 0 {
		traits = strings.Join(p.Traits, ", ")
	}
	return fmt.Sprintf("%s is a %s who is %s. Their main goal is to %s. They are haunted by %s.",
		orDefault(p.Name, "Unnamed Agent"),
		orDefault(p.Role, DefaultRole),
		traits,
		orDefault(p.Goal, "achieve something"),
		orDefault(p.InternalConflict, "an unknown issue"),
	)
}

// NoCharactersSummary 尚无角色时的占位说明
const NoCharactersSummary = "No specific characters defined yet."

// Summaries 逐行拼接全部角色简介
func Summaries(agents []entity.CharacterProfile) string {
	if len(agents) == 0 {
		return NoCharactersSummary
	}
	lines := make([]string, 0, len(agents))
	for _, a := range agents {
		lines = append(lines, Describe(a))
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"story-weaver-api/internal/application/story/character"
	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/pkg/logger"
)

// AddCharacter 生成并加入角色档案，随后让模型确认新角色
func (o *Orchestrator) AddCharacter(ctx context.Context, state *entity.StoryState, name, role string) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventAddCharacter, start, out) }()

	profile, err := o.characters.Generate(name, role)
	if err != nil {
		state.Append(entity.RoleAssistant, "⚠️ "+statusCharacterNeeded)
		return failed(statusCharacterNeeded)
	}
	state.AddAgent(profile)
	state.SetUIInput(entity.UIInputClearCharInputs, true)

	desc := character.Describe(profile)
	logger.Info(ctx, "character added", "name", profile.Name, "role", profile.Role)

	state.Append(entity.RoleAssistant, "✅ Character added: "+desc)
	state.ClearLastSlide()
	directive := fmt.Sprintf("System Update: New character '%s' (%s) added. Description: %s. Please acknowledge this and, based on current setup state, ask the next logical setup question or await user input for story.",
		profile.Name, profile.Role, desc)
	o.ContinueSegment(ctx, state, directive)
	return ok()
}

var errMissingSeparator = errors.New("expected '<command>:<name>[,<role>]'")

// parseCharacterCommand 解析 "<前缀>:<名字>[,<角色>]"
func parseCharacterCommand(command string) (name, role string, err error) {
	_, rest, found := strings.Cut(command, ":")
	if !found {
		return "", "", errMissingSeparator
	}
	name, role, _ = strings.Cut(rest, ",")
	name = strings.TrimSpace(name)
	role = strings.TrimSpace(role)
	if name == "" {
		return "", "", errors.New("character name cannot be empty")
	}
	if role == "" {
		role = character.DefaultRole
	}
	return name, role, nil
}

// AddCharacterFromText 处理聊天中的 "add character: 名字, 角色" 指令
func (o *Orchestrator) AddCharacterFromText(ctx context.Context, state *entity.StoryState, command string) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventAddCharacterCmd, start, out) }()

	name, role, err := parseCharacterCommand(command)
	if err == nil {
		var profile entity.CharacterProfile
		profile, err = o.characters.Generate(name, role)
		if err == nil {
			state.AddAgent(profile)
			desc := character.Describe(profile)
			logger.Info(ctx, "character added via chat", "name", profile.Name, "role", profile.Role)

			state.Append(entity.RoleAssistant, fmt.Sprintf("✅ Character '%s' added via chat.", profile.Name))
			directive := fmt.Sprintf("System Update: Character '%s' (%s) added via chat. Desc: %s. Acknowledge & continue setup.",
				profile.Name, profile.Role, desc)
			o.ContinueSegment(ctx, state, directive)
			return ok()
		}
	}

	logger.Warn(ctx, "add character command rejected", "error", err.Error())
	msg := fmt.Sprintf("⚠️ Error processing 'add character' command: %v", err)
	state.Append(entity.RoleAssistant, msg)
	return failed(msg)
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownAction = errors.New("unknown action")

type actionDecoder func(json.RawMessage) (Action, error)

var actionDecoders = map[string]actionDecoder{}

func registerAction[T Action]() {
	var zero T
	actionDecoders[zero.Name()] = func(raw json.RawMessage) (Action, error) {
		var a T
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &a); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", zero.Name(), err)
			}
		}
		return a, nil
	}
}

func init() {
	registerAction[SetStep]()
	registerAction[SetQuickContext]()
	registerAction[SetGoal]()
	registerAction[SetArchetype]()
	registerAction[AddInterviewAnswer]()
	registerAction[SetVibeSummary]()
	registerAction[SetSuggestedPillars]()
	registerAction[TogglePillarSelection]()
	registerAction[SetMandalart]()
	registerAction[EnterDiscoveryMode]()
	registerAction[AddDiscoveryAnswer]()
	registerAction[SetSuggestedGoals]()
	registerAction[BackToGoalInput]()
	registerAction[ResetSession]()
	registerAction[StartActionSelection]()
	registerAction[SetActionSuggestions]()
	registerAction[MergeRegeneratedActions]()
	registerAction[ToggleAction]()
	registerAction[AddCustomAction]()
	registerAction[CompletePillarActions]()
	registerAction[FillActionBoard]()
}

// ActionNames lists every action type accepted by DecodeAction.
func ActionNames() []string {
	names := make([]string, 0, len(actionDecoders))
	for name := range actionDecoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeAction builds the action named typ from its JSON fields.
func DecodeAction(typ string, fields json.RawMessage) (Action, error) {
	decode, ok := actionDecoders[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, typ)
	}
	return decode(fields)
}

package actor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

const optionSystemPrompt = `You generate action options for the protagonist of a tabletop RPG session.
Answer with a JSON array of 3 to 5 options and nothing else:
[{"id": "opt-1", "type": "TALK"|"ACT"|"WAIT", "description": "...", "target": "optional entity id"}]
Options should be distinct and grounded in the current scene.`

// PlayerOptionAgent generates candidate actions for the player character.
// When the model's output cannot be parsed, a minimal fallback set is
// returned so the player is never left without a move.
type PlayerOptionAgent struct {
	llm    Completer
	scn    *scenario.Scenario
	logger *zap.Logger
}

// NewPlayerOptionAgent creates an option generator for the protagonist.
func NewPlayerOptionAgent(llm Completer, scn *scenario.Scenario, logger *zap.Logger) *PlayerOptionAgent {
	return &PlayerOptionAgent{llm: llm, scn: scn, logger: logger}
}

// GenerateOptions implements OptionGenerator.
func (a *PlayerOptionAgent) GenerateOptions(ctx context.Context, characterID string, snapshot *state.GameState, history []chat.Message) ([]ActionOption, error) {
	ch := snapshot.Character(characterID)
	if ch == nil {
		return nil, fmt.Errorf("character %q not in snapshot", characterID)
	}

	user := describeCharacter(a.scn, ch) + "\n" +
		describeState(a.scn, snapshot) + "\nRecent conversation:\n" +
		describeHistory(history) + "\nPropose the protagonist's options for this round."

	raw, err := a.llm.Complete(ctx, optionSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	var options []ActionOption
	if err := json.Unmarshal([]byte(extractJSON(raw)), &options); err != nil || len(options) == 0 {
		a.logger.Warn("option generator returned malformed output, using fallback options",
			zap.String("character_id", characterID),
		)
		return fallbackOptions(), nil
	}
	for i := range options {
		if options[i].ID == "" {
			options[i].ID = fmt.Sprintf("opt-%d", i+1)
		}
		options[i].Type = normalizeActionType(string(options[i].Type))
	}
	return options, nil
}

func fallbackOptions() []ActionOption {
	return []ActionOption{
		{ID: "opt-1", Type: ActionAct, Description: "Look around and investigate the surroundings"},
		{ID: "opt-2", Type: ActionTalk, Description: "Speak with someone present"},
		{ID: "opt-3", Type: ActionWait, Description: "Wait and observe"},
	}
}

// CLIChooser presents options on a terminal and reads the pick from the
// player. Entering a number picks an option; free text becomes a custom
// TALK or ACT declaration.
type CLIChooser struct {
	in  *bufio.Reader
	out io.Writer
}

// NewCLIChooser wraps the given streams, typically stdin and stdout.
func NewCLIChooser(in io.Reader, out io.Writer) *CLIChooser {
	return &CLIChooser{in: bufio.NewReader(in), out: out}
}

// Choose implements Chooser.
func (c *CLIChooser) Choose(ctx context.Context, characterID string, options []ActionOption) (DeclaredAction, error) {
	fmt.Fprintln(c.out, "\nYour options:")
	for i, opt := range options {
		fmt.Fprintf(c.out, "  %d. [%s] %s\n", i+1, opt.Type, opt.Description)
	}
	fmt.Fprint(c.out, "Pick a number, or type your own action (prefix with ! to act): ")

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- answer{line, err}
	}()

	select {
	case <-ctx.Done():
		return DeclaredAction{}, ctx.Err()
	case ans := <-ch:
		if ans.err != nil {
			return DeclaredAction{}, fmt.Errorf("reading player input: %w", ans.err)
		}
		line := strings.TrimSpace(ans.line)
		if line == "" {
			return WaitAction(characterID), nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(options) {
			opt := options[n-1]
			return DeclaredAction{
				CharacterID: characterID,
				Type:        opt.Type,
				Content:     opt.Description,
				Target:      opt.Target,
			}, nil
		}
		actionType := ActionTalk
		if strings.HasPrefix(line, "!") {
			actionType = ActionAct
			line = strings.TrimSpace(strings.TrimPrefix(line, "!"))
		}
		return DeclaredAction{CharacterID: characterID, Type: actionType, Content: line}, nil
	}
}

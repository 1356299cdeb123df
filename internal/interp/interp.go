package interp

import (
	"nctrace/internal/config"
	"nctrace/internal/lexer"
	"nctrace/internal/ncstate"
	"nctrace/internal/parser"
)

// Interpreter ties the lexer, parser, and evaluator together and owns
// the two-phase run an initial_state_program implies: a defaults
// program mutates State first and its own rows are discarded, then the
// main program runs and its rows are returned.
type Interpreter struct {
	Config *config.Config
	State  *ncstate.State
}

// New builds an Interpreter from cfg, applying variable_initializations
// immediately so both the defaults program and the main program see
// them from their very first block.
func New(cfg *config.Config) (*Interpreter, error) {
	state := ncstate.New(cfg.ResolvedAxes(), cfg.IterationLimit)
	state.AutoInitVariables = cfg.AutoInitVariables
	state.ModalDefaults = cfg.ModalDefaults

	for name, v := range cfg.VariableInitializations {
		if err := state.SetVariable(name, v); err != nil {
			return nil, err
		}
	}
	return &Interpreter{Config: cfg, State: state}, nil
}

// RunDefaults interprets source (the configured initial_state_program)
// purely for its side effects on State; its rows are never surfaced.
func (ip *Interpreter) RunDefaults(source string) error {
	if source == "" {
		return nil
	}
	_, err := ip.run(source)
	return err
}

// Run interprets the main program and returns its rows in block order.
func (ip *Interpreter) Run(source string) ([]Row, error) {
	return ip.run(source)
}

func (ip *Interpreter) run(source string) ([]Row, error) {
	tokens := lexer.NewScanner(source).ScanTokens()
	fileNode, err := parser.NewParserWithSource(tokens, source).Parse()
	if err != nil {
		return nil, err
	}
	if len(fileNode.Children) != 1 {
		return nil, nil
	}
	var rows []Row
	if err := InterpretBlocks(fileNode.Children[0], ip.State, ip.Config, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/lexer"
	"github.com/hivellm/tml/internal/source"
	"github.com/spf13/cobra"
)

var (
	lexEval    string
	lexShowPos bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file and print the resulting tokens",
	Long: `Tokenize (lex) a Language source file and print the resulting
token stream, one token per line. Useful for debugging the lexer.

Examples:
  tmlc lex script.tml
  tmlc lex -e "let x = 42"
  tmlc lex --show-pos script.tml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
}

func runLex(cmd *cobra.Command, args []string) error {
	name, text, err := readSource(lexEval, args)
	if err != nil {
		return err
	}

	file := source.NewFile(name, text)
	bag := &diag.Bag{}
	l := lexer.New(file, bag)

	count := 0
	for {
		tok := l.NextToken()
		count++
		line := fmt.Sprintf("%-4d %q", tok.Kind, tok.Lexeme)
		if lexShowPos {
			pos := file.Position(tok.Span.Start)
			line += fmt.Sprintf(" @%d:%d", pos.Line, pos.Column)
		}
		fmt.Println(line)
		if tok.Kind == lexer.Eof {
			break
		}
	}

	if bag.HasErrors() {
		fmt.Fprint(os.Stderr, bag.Render(file))
		return fmt.Errorf("lexing failed with %d error(s)", bag.Len())
	}
	return nil
}

// readSource resolves the input text for a subcommand from either an
// -e/--eval flag, a file argument, or stdin, mirroring the teacher's
// lex/parse command input-selection order.
func readSource(eval string, args []string) (name, text string, err error) {
	switch {
	case eval != "":
		return "<eval>", eval, nil
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return args[0], string(content), nil
	default:
		content, err := readStdin()
		if err != nil {
			return "", "", err
		}
		return "<stdin>", content, nil
	}
}

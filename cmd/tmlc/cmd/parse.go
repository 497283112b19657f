package cmd

import (
	"fmt"
	"os"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/parser"
	"github.com/hivellm/tml/internal/source"
	"github.com/spf13/cobra"
)

var (
	parseEval     string
	parseDumpTree bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file and display its declarations",
	Long: `Parse Language source code and display its top-level declarations.

If no file is provided, reads from stdin. Use --dump-ast to show each
declaration's shape instead of just its name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading a file")
	parseCmd.Flags().BoolVar(&parseDumpTree, "dump-ast", false, "dump each declaration's shape")
}

func runParse(cmd *cobra.Command, args []string) error {
	name, text, err := readSource(parseEval, args)
	if err != nil {
		return err
	}

	file := source.NewFile(name, text)
	bag := &diag.Bag{}
	p := parser.New(file, bag)
	f := p.ParseFile()

	if bag.HasErrors() {
		fmt.Fprint(os.Stderr, bag.Render(file))
		return fmt.Errorf("parsing failed with %d error(s)", bag.Len())
	}

	if f.Module != nil {
		fmt.Printf("module %s\n", f.Module.Path.String())
	}
	fmt.Printf("%d declaration(s)\n", len(f.Decls))
	for _, d := range f.Decls {
		if parseDumpTree {
			dumpDecl(d)
		} else {
			fmt.Println(declSummary(d))
		}
	}
	return nil
}

func declSummary(d ast.Decl) string {
	switch n := d.(type) {
	case *ast.FuncDecl:
		return fmt.Sprintf("fn %s (%d params)", n.Name, len(n.Params))
	case *ast.StructDecl:
		return fmt.Sprintf("struct %s (%d fields)", n.Name, len(n.Fields))
	case *ast.EnumDecl:
		return fmt.Sprintf("enum %s (%d variants)", n.Name, len(n.Variants))
	case *ast.BehaviorDecl:
		return fmt.Sprintf("behavior %s (%d methods)", n.Name, len(n.Methods))
	case *ast.ImplDecl:
		return fmt.Sprintf("impl for %T", n.Self)
	case *ast.ClassDecl:
		return fmt.Sprintf("class %s (%d fields, %d methods)", n.Name, len(n.Fields), len(n.Methods))
	case *ast.InterfaceDecl:
		return fmt.Sprintf("interface %s", n.Name)
	case *ast.TypeAliasDecl:
		return fmt.Sprintf("type %s", n.Name)
	case *ast.ConstDecl:
		return fmt.Sprintf("const %s", n.Name)
	case *ast.UseDecl:
		return fmt.Sprintf("use %s", n.Path.String())
	default:
		return fmt.Sprintf("%T", d)
	}
}

func dumpDecl(d ast.Decl) {
	fmt.Printf("%s\n  %+v\n", declSummary(d), d)
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hivellm/tml/internal/codegen"
	"github.com/hivellm/tml/internal/config"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/metadata"
	"github.com/spf13/cobra"
)

var (
	buildOutput       string
	buildEmitCHeader  bool
	buildEmitMetadata bool
	buildEmitDebug    bool
	buildTargetTriple string
	buildOptLevel     int
	buildConfigPath   string
	buildVerbose      bool
	buildCoverage     bool
	buildCoverageQuiet bool
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Compile a source file to LLVM IR",
	Long: `Run the full pipeline (lex, parse, check, borrow-check, codegen) over
a source file and write the resulting LLVM IR to disk.

Examples:
  tmlc build main.tml
  tmlc build main.tml -o main.ll --emit-c-header --emit-metadata
  tmlc build main.tml --target-triple x86_64-unknown-linux-gnu -g
  tmlc build main.tml --coverage`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file (default: <input>.ll)")
	buildCmd.Flags().BoolVar(&buildEmitCHeader, "emit-c-header", false, "also emit a C FFI header (<input>.h)")
	buildCmd.Flags().BoolVar(&buildEmitMetadata, "emit-metadata", false, "also emit the module metadata side channel (<input>.tml.meta)")
	buildCmd.Flags().BoolVarP(&buildEmitDebug, "debug-info", "g", false, "emit DWARF debug metadata")
	buildCmd.Flags().StringVar(&buildTargetTriple, "target-triple", "", "LLVM target triple")
	buildCmd.Flags().IntVar(&buildOptLevel, "opt-level", 0, "optimization level (0-3)")
	buildCmd.Flags().StringVar(&buildConfigPath, "config", "tmlc.yaml", "project config file")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "verbose output")
	buildCmd.Flags().BoolVar(&buildCoverage, "coverage", false, "instrument the build with tml_cover_func/_line/_branch calls")
	buildCmd.Flags().BoolVar(&buildCoverageQuiet, "coverage-quiet", false, "suppress the coverage summary the runtime prints on exit")
}

func runBuild(cmd *cobra.Command, args []string) error {
	filename := args[0]

	opts, err := config.Load(buildConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", buildConfigPath, err)
	}
	opts.SourceFile = filename
	if buildEmitDebug {
		opts.EmitDebugInfo = true
	}
	if buildTargetTriple != "" {
		opts.TargetTriple = buildTargetTriple
	}
	if buildOptLevel != 0 {
		opts.OptimizationLevel = buildOptLevel
	}
	if buildCoverage {
		opts.CoverageEnabled = true
	}
	if buildCoverageQuiet {
		opts.CoverageQuiet = true
	}

	prog, ok, err := compileUpToBorrow(filename, false)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("compilation failed")
	}

	if buildVerbose {
		fmt.Fprintf(os.Stderr, "Generating LLVM IR for %s...\n", filename)
	}

	errs := &diag.Bag{}
	gen := codegen.New(prog.env, errs, opts, prog.src)
	ir := gen.Generate(prog.file)

	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Render(prog.src))
		return fmt.Errorf("codegen failed with %d error(s)", errs.Len())
	}

	outFile := buildOutput
	if outFile == "" {
		outFile = replaceExt(filename, ".ll")
	}
	if err := os.WriteFile(outFile, []byte(ir), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}
	if buildVerbose {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", outFile, len(ir))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}

	if buildEmitCHeader {
		moduleName := moduleNameFor(filename)
		header, err := gen.GenCHeader(prog.file, moduleName, codegen.CHeaderOptions{
			AddIncludeGuards: true,
			AddExternC:       true,
		})
		if err != nil {
			if buildVerbose {
				fmt.Fprintf(os.Stderr, "skipping C header: %v\n", err)
			}
		} else {
			headerFile := replaceExt(filename, ".h")
			if err := os.WriteFile(headerFile, []byte(header), 0o644); err != nil {
				return fmt.Errorf("failed to write header file %s: %w", headerFile, err)
			}
			if buildVerbose {
				fmt.Fprintf(os.Stderr, "Wrote %s\n", headerFile)
			}
		}
	}

	if buildEmitMetadata {
		moduleName := moduleNameFor(filename)
		mod := metadata.BuildModule(prog.file, prog.env, moduleName, filename)
		metaPath := metadata.GetMetadataPath(moduleName)
		if err := metadata.SaveToFile(mod, metaPath); err != nil {
			return fmt.Errorf("failed to write metadata %s: %w", metaPath, err)
		}
		if buildVerbose {
			fmt.Fprintf(os.Stderr, "Wrote %s\n", metaPath)
		}
	}

	return nil
}

func replaceExt(filename, ext string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + ext
}

package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"

	"github.com/katsu/eqlang"
	"github.com/katsu/eqlang/lexer"
	"github.com/katsu/eqlang/registry"
	"github.com/katsu/eqlang/types"
	"github.com/katsu/eqlang/vm"
)

const historyFile = ".eqlang_history"

// dataFile is the YAML document naming the attributes a formula may
// reference and, optionally, the record to evaluate against.
type dataFile struct {
	Attributes map[string]string      `yaml:"attributes"`
	Record     map[string]interface{} `yaml:"record"`
}

func parseValueType(s string) (types.ValueType, error) {
	switch strings.ToLower(s) {
	case "boolean", "bool":
		return types.Boolean, nil
	case "int":
		return types.Int, nil
	case "float", "number":
		return types.Float, nil
	case "string":
		return types.String, nil
	}
	return types.NoType, fmt.Errorf("unknown attribute type %q", s)
}

func loadData(path string) (types.Schema, vm.Record, error) {
	schema := types.Schema{}
	rec := vm.Record{}
	if path == "" {
		return schema, rec, nil
	}

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var doc dataFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}

	for name, typeName := range doc.Attributes {
		t, err := parseValueType(typeName)
		if err != nil {
			return nil, nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		schema[name] = t
	}

	for name, raw := range doc.Record {
		v, err := recordValue(raw, schema[name])
		if err != nil {
			return nil, nil, fmt.Errorf("record value %q: %w", name, err)
		}
		rec[name] = v
		if _, ok := schema[name]; !ok {
			schema[name] = v.Type
		}
	}

	return schema, rec, nil
}

// recordValue converts a decoded YAML scalar into a Value, honoring the
// declared attribute type when there is one.
func recordValue(raw interface{}, declared types.ValueType) (types.Value, error) {
	switch v := raw.(type) {
	case bool:
		return types.BoolValue(v), nil
	case int:
		if declared == types.Float {
			return types.FloatValue(float64(v)), nil
		}
		return types.IntValue(int64(v)), nil
	case float64:
		return types.FloatValue(v), nil
	case string:
		return types.StringValue(v), nil
	}
	return types.Value{}, fmt.Errorf("unsupported YAML value %v", raw)
}

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func formulaArg(c *cli.Context) (string, error) {
	formula := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(formula) == "" {
		return "", fmt.Errorf("no formula given")
	}
	return formula, nil
}

func main() {
	app := &cli.App{
		Name:  "eqlang",
		Usage: "attribute equation compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data",
				Usage: "YAML file with attribute types and a record",
			},
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:  "tokens",
				Usage: "dump the token stream of a formula",
				Action: func(c *cli.Context) error {
					formula, err := formulaArg(c)
					if err != nil {
						return err
					}
					l := lexer.New(formula)
					for {
						tok := l.NextToken()
						repr.Println(tok)
						if tok.Kind == types.EOS || tok.Kind == types.ERROR {
							return nil
						}
					}
				},
			},
			{
				Name:  "ast",
				Usage: "dump the parsed tree of a formula",
				Action: func(c *cli.Context) error {
					formula, err := formulaArg(c)
					if err != nil {
						return err
					}
					schema, _, err := loadData(c.String("data"))
					if err != nil {
						return err
					}
					root, err := eqlang.Parse(formula, registry.Builtins(), schema)
					if err != nil {
						return err
					}
					repr.Println(root)
					return nil
				},
			},
			{
				Name:  "build",
				Usage: "compile a formula and print its instructions",
				Action: func(c *cli.Context) error {
					formula, err := formulaArg(c)
					if err != nil {
						return err
					}
					schema, _, err := loadData(c.String("data"))
					if err != nil {
						return err
					}
					prog, err := eqlang.Compile(formula, registry.Builtins(), schema)
					if err != nil {
						return err
					}
					fmt.Print(prog)
					return nil
				},
			},
			{
				Name:  "eval",
				Usage: "compile a formula and run it against the record",
				Action: func(c *cli.Context) error {
					formula, err := formulaArg(c)
					if err != nil {
						return err
					}
					schema, rec, err := loadData(c.String("data"))
					if err != nil {
						return err
					}
					out, err := eqlang.Eval(formula, registry.Builtins(), schema, rec)
					if err != nil {
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:  "repl",
				Usage: "evaluate formulas interactively",
				Action: func(c *cli.Context) error {
					schema, rec, err := loadData(c.String("data"))
					if err != nil {
						return err
					}
					return runRepl(schema, rec)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runRepl(schema types.Schema, rec vm.Record) error {
	fmt.Println("eqlang REPL. Ctrl+D exits; :funcs lists functions.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	reg := registry.Builtins()
	for {
		line, err := ln.Prompt("eq> ")
		if err == liner.ErrPromptAborted {
			// Ctrl+C drops the line, Ctrl+D below ends the session.
			fmt.Println()
			continue
		}
		if err != nil {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			switch strings.TrimSpace(strings.ToLower(line)) {
			case ":quit":
				return nil
			case ":funcs":
				for _, fn := range reg.All() {
					fmt.Printf("%-8s %s %s\n", fn.Name(), fn.Summary(), fn.Usage())
				}
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		out, err := eqlang.Eval(line, reg, schema, rec)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		fmt.Println(out)
		ln.AppendHistory(line)
	}
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/opbokel/jsonschema-generator/internal/config"
	"github.com/opbokel/jsonschema-generator/pkg/jsonschema"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [args]

Commands:
  go <pattern> [type ...]     generate schemas for types of a Go package
                              (all exported types when none are named)
  proto <file.proto ...>      generate schemas for protobuf messages

Flags:
  -config <file>   generator options YAML (default %s if present)
  -out <dir>       write one JSON file per schema into <dir>
  -db <file>       write schemas into a SQLite database
  -I <dir>         proto import path (repeatable)
`, config.ToolName, config.DefaultConfigFile)
	os.Exit(2)
}

// fatalf prints the message (red when stderr is a terminal) and exits.
func fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		msg = "\033[31m" + msg + "\033[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

type invocation struct {
	configFile  string
	outDir      string
	dbFile      string
	importPaths []string
	command     string
	args        []string
}

// parseArgs handles flags manually so flags may appear before the command.
func parseArgs(args []string) invocation {
	var inv invocation
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		flagValue := func(name string) string {
			i++
			if i >= len(args) {
				fatalf("flag %s requires a value", name)
			}
			return args[i]
		}
		switch arg {
		case "-config", "--config":
			inv.configFile = flagValue(arg)
		case "-out", "--out":
			inv.outDir = flagValue(arg)
		case "-db", "--db":
			inv.dbFile = flagValue(arg)
		case "-I":
			inv.importPaths = append(inv.importPaths, flagValue(arg))
		case "-help", "--help", "-h":
			usage()
		default:
			fatalf("unknown flag: %s", arg)
		}
		i++
	}
	if i >= len(args) {
		usage()
	}
	inv.command = args[i]
	inv.args = args[i+1:]
	return inv
}

func loadOptions(inv invocation) jsonschema.Options {
	path := inv.configFile
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err != nil {
			return jsonschema.DefaultOptions()
		}
		path = config.DefaultConfigFile
	}
	opts, err := jsonschema.LoadOptions(path)
	if err != nil {
		fatalf("load config: %s", err)
	}
	return opts
}

// openStore picks the output backend. With neither -out nor -db documents
// are printed to stdout.
func openStore(inv invocation) jsonschema.Store {
	switch {
	case inv.outDir != "" && inv.dbFile != "":
		fatalf("-out and -db are mutually exclusive")
		return nil
	case inv.outDir != "":
		store, err := jsonschema.NewFileStore(inv.outDir)
		if err != nil {
			fatalf("%s", err)
		}
		return store
	case inv.dbFile != "":
		store, err := jsonschema.NewSQLiteStore(inv.dbFile)
		if err != nil {
			fatalf("%s", err)
		}
		return store
	default:
		return nil
	}
}

func emit(tk *jsonschema.Toolkit, store jsonschema.Store, names []string) {
	if store != nil {
		defer store.Close()
		if err := tk.GenerateAll(store, names); err != nil {
			fatalf("%s", err)
		}
		return
	}
	if len(names) == 0 {
		names = tk.Registry().DeclaredNames()
	}
	for _, name := range names {
		data, err := tk.GenerateJSON(name)
		if err != nil {
			fatalf("generate %s: %s", name, err)
		}
		fmt.Println(string(data))
	}
}

func handleGo(inv invocation, tk *jsonschema.Toolkit) {
	if len(inv.args) == 0 {
		fatalf("go: package pattern required")
	}
	pattern := inv.args[0]
	typeNames := inv.args[1:]
	if err := tk.LoadGoPackage(pattern, typeNames); err != nil {
		fatalf("load %s: %s", pattern, err)
	}
	emit(tk, openStore(inv), typeNames)
}

func handleProto(inv invocation, tk *jsonschema.Toolkit) {
	if len(inv.args) == 0 {
		fatalf("proto: at least one .proto file required")
	}
	if err := tk.LoadProtoFiles(inv.importPaths, inv.args...); err != nil {
		fatalf("load proto: %s", err)
	}
	emit(tk, openStore(inv), nil)
}

func main() {
	inv := parseArgs(os.Args[1:])
	tk := jsonschema.New(loadOptions(inv))

	switch inv.command {
	case "go":
		handleGo(inv, tk)
	case "proto":
		handleProto(inv, tk)
	default:
		fatalf("unknown command: %s", inv.command)
	}
}

package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagCount // repeatable switch, takes no value
	flagFile  // file with glob pattern
	flagDir   // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name      string
	Desc      string
	Flags     []flagDef
	TakesDirs bool // accepts a directory argument
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	FileGlob string // file glob pattern
	IsDir    bool   // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"config":    {FileGlob: "*.yaml,*.yml"},
	"output":    {IsDir: true},
	"fragments": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		case "count":
			fd.Type = flagCount
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSet.
func getCommands() []commandDef {
	runFlagDefs := extractFlagsFromFlagSet(buildRunFlagSet("run", &runFlags{}))

	return []commandDef{
		{Name: "run", Desc: "Process the input tree", Flags: runFlagDefs, TakesDirs: true},
		{Name: "config", Desc: "Print the effective configuration", Flags: runFlagDefs, TakesDirs: true},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}
}

// commandNames returns the command names in registry order.
func commandNames(cmds []commandDef) []string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return names
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// generateBash writes a bash completion script.
func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for ssirewrite\n\n")
	b.WriteString("_ssirewrite_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 && ${cur} != -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\") $(compgen -d -- \"${cur}\"))\n", strings.Join(commandNames(cmds), " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${prev}\" in\n")
	for _, f := range cmds[0].Flags {
		switch f.Type {
		case flagDir:
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -d -- \"${cur}\"))\n            return\n            ;;\n", bashFlagPattern(f))
		case flagFile:
			fmt.Fprintf(&b, "        %s)\n            COMPREPLY=($(compgen -f -X '!@(%s)' -- \"${cur}\") $(compgen -d -- \"${cur}\"))\n            return\n            ;;\n",
				bashFlagPattern(f), strings.ReplaceAll(f.FileGlob, ",", "|"))
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"${cmd}\" in\n")
	for _, c := range cmds {
		switch {
		case c.Name == "help":
			fmt.Fprintf(&b, "        help)\n            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n            ;;\n", strings.Join(commandNames(cmds), " "))
		case c.Name == "completion":
			b.WriteString("        completion)\n            COMPREPLY=($(compgen -W \"bash zsh fish powershell\" -- \"${cur}\"))\n            ;;\n")
		case c.TakesDirs:
			fmt.Fprintf(&b, "        %s)\n", c.Name)
			b.WriteString("            if [[ ${cur} == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n", strings.Join(longFlags(c.Flags), " "))
			b.WriteString("            else\n                COMPREPLY=($(compgen -d -- \"${cur}\"))\n            fi\n            ;;\n")
		}
	}
	fmt.Fprintf(&b, "        *)\n            COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\"))\n            ;;\n", strings.Join(longFlags(cmds[0].Flags), " "))
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -F _ssirewrite_completions ssirewrite\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// bashFlagPattern returns the case pattern matching a flag's spellings.
func bashFlagPattern(f flagDef) string {
	if f.Short != "" {
		return "-" + f.Short + "|--" + f.Long
	}
	return "--" + f.Long
}

// longFlags returns "--name" for every flag.
func longFlags(flags []flagDef) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, "--"+f.Long)
	}
	return out
}

// generateZsh writes a zsh completion script.
func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef ssirewrite\n\n")
	b.WriteString("_ssirewrite() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")

	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        _files -/\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		switch {
		case c.Name == "help":
			b.WriteString("        help)\n            _describe 'command' commands\n            ;;\n")
		case c.Name == "completion":
			b.WriteString("        completion)\n            _values 'shell' bash zsh fish powershell\n            ;;\n")
		case c.TakesDirs:
			fmt.Fprintf(&b, "        %s)\n            _arguments \\\n", c.Name)
			for _, f := range c.Flags {
				fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
			}
			b.WriteString("                '*:input directory:_files -/'\n            ;;\n")
		}
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _ssirewrite ssirewrite\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec returns the _arguments spec for one flag.
func zshFlagSpec(f flagDef) string {
	var action string
	switch f.Type {
	case flagBool:
		action = ""
	case flagCount:
		desc := "[" + zshEscape(f.Desc) + "]"
		if f.Short != "" {
			return fmt.Sprintf("'*'{-%s,--%s}'%s'", f.Short, f.Long, desc)
		}
		return fmt.Sprintf("'*--%s%s'", f.Long, desc)
	case flagDir:
		action = ":dir:_files -/"
	case flagFile:
		globs := strings.Split(f.FileGlob, ",")
		action = fmt.Sprintf(":file:_files -g '(%s)'", strings.Join(globs, "|"))
	default:
		action = ":value:"
	}

	desc := "[" + zshEscape(f.Desc) + "]"
	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s%s%s'", f.Long, desc, action)
}

// zshEscape escapes characters special inside single-quoted _arguments specs.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

// generateFish writes a fish completion script.
func generateFish(w io.Writer) error {
	cmds := getCommands()
	names := strings.Join(commandNames(cmds), " ")
	var b strings.Builder

	b.WriteString("# fish completion for ssirewrite\n\n")
	b.WriteString("function __fish_ssirewrite_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_ssirewrite_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $argv[1] = $cmd[2]\n")
	b.WriteString("end\n\n")

	b.WriteString("complete -c ssirewrite -f\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c ssirewrite -n __fish_ssirewrite_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}
	b.WriteString("complete -c ssirewrite -n __fish_ssirewrite_needs_command -a '(__fish_complete_directories)'\n")
	fmt.Fprintf(&b, "complete -c ssirewrite -n '__fish_ssirewrite_using_command help' -a '%s'\n", names)
	b.WriteString("complete -c ssirewrite -n '__fish_ssirewrite_using_command completion' -a 'bash zsh fish powershell'\n")

	for _, c := range cmds {
		if !c.TakesDirs {
			continue
		}
		cond := fmt.Sprintf("'__fish_ssirewrite_using_command %s'", c.Name)
		fmt.Fprintf(&b, "complete -c ssirewrite -n %s -a '(__fish_complete_directories)'\n", cond)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c ssirewrite -n %s -l %s", cond, f.Long)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			switch f.Type {
			case flagBool, flagCount:
			case flagDir:
				b.WriteString(" -r -a '(__fish_complete_directories)'")
			case flagFile:
				b.WriteString(" -r -F")
			default:
				b.WriteString(" -r")
			}
			fmt.Fprintf(&b, " -d '%s'\n", fishEscape(f.Desc))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishEscape escapes single quotes for fish strings.
func fishEscape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

// generatePowerShell writes a PowerShell completion script.
func generatePowerShell(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# PowerShell completion for ssirewrite\n\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName ssirewrite -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $commands = @(\n")
	for i, c := range cmds {
		sep := ","
		if i == len(cmds)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        @{ Name = '%s'; Desc = '%s' }%s\n", c.Name, psEscape(c.Desc), sep)
	}
	b.WriteString("    )\n")
	b.WriteString("    $flags = @(\n")
	flags := cmds[0].Flags
	for i, f := range flags {
		sep := ","
		if i == len(flags)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        @{ Name = '--%s'; Desc = '%s' }%s\n", f.Long, psEscape(f.Desc), sep)
	}
	b.WriteString("    )\n\n")

	b.WriteString("    $elements = $commandAst.CommandElements\n")
	b.WriteString("    if ($elements.Count -le 2 -and -not $wordToComplete.StartsWith('-')) {\n")
	b.WriteString("        $commands | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterValue', $_.Desc)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    if ($elements[1].ToString() -eq 'completion') {\n")
	b.WriteString("        'bash', 'zsh', 'fish', 'powershell' | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $flags | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Desc)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// psEscape escapes single quotes for PowerShell strings.
func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssirewrite completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(ssirewrite completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(ssirewrite completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    ssirewrite completion fish > ~/.config/fish/completions/ssirewrite.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    ssirewrite completion powershell | Out-String | Invoke-Expression")
}

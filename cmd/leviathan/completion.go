// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/leviathan/internal/errors"
)

// bashCompletionTemplate is the bash completion script for Leviathan.
//
// It provides command and flag completion for bash shells using the
// bash completion framework.
const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for Leviathan
# Installation:
#   source <(leviathan completion bash)
#   Or add to ~/.bashrc:
#   echo 'source <(leviathan completion bash)' >> ~/.bashrc

_leviathan_completion() {
    local cur prev commands
    commands="init evaluate rules completion"

    # Current word being completed
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # Global flags
    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--version --config" -- ${cur}) )
        return 0
    fi

    # First argument: complete commands
    if [ $COMP_CWORD -eq 1 ]; then
        COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        return 0
    fi

    # Command-specific flag completion
    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        evaluate)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--facts --rules --json --sarif --workers --timeout --max-findings --no-color --debug --metrics-addr" -- ${cur}) )
            fi
            ;;
        rules)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--rules --validate --categories --json" -- ${cur}) )
            fi
            ;;
        init)
            if [[ ${cur} == -* ]] ; then
                COMPREPLY=( $(compgen -W "--force --facts --rules" -- ${cur}) )
            fi
            ;;
        completion)
            # Complete shell names for completion command
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _leviathan_completion leviathan
`

// zshCompletionTemplate is the zsh completion script for Leviathan.
//
// It provides command and flag completion for zsh shells using the
// zsh completion system.
const zshCompletionTemplate = `#compdef leviathan

# Zsh completion script for Leviathan
# Installation:
#   1. Ensure compinit is loaded (add to ~/.zshrc if not present):
#      autoload -U compinit; compinit
#   2. Save this script to a directory in your fpath:
#      leviathan completion zsh > "${fpath[1]}/_leviathan"
#   3. Reload completions:
#      rm -f ~/.zcompdump; compinit

_leviathan() {
    local -a commands
    commands=(
        'init:Create .leviathan/engine.yaml configuration'
        'evaluate:Evaluate a rule set over a fact document'
        'rules:Inspect and validate rule sets'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '--version[Show version and exit]' \
        '--config[Path to .leviathan/engine.yaml]:config file:_files' \
        '1: :->command' \
        '*: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[2] in
                evaluate)
                    _arguments \
                        '--facts[Fact document path]:facts file:_files' \
                        '--rules[Rule set path]:rules file:_files' \
                        '--json[Output as JSON]' \
                        '--sarif[Write a SARIF report]:sarif file:_files' \
                        '--workers[Parallel rule evaluation width]:workers:' \
                        '--timeout[Per-rule wall-clock budget]:timeout:' \
                        '--max-findings[Per-rule findings cap]:count:' \
                        '--no-color[Disable colored output]' \
                        '--debug[Enable debug logging]' \
                        '--metrics-addr[Prometheus metrics address]:addr:'
                    ;;
                rules)
                    _arguments \
                        '--rules[Rule set path]:rules file:_files' \
                        '--validate[Validate the rule set and exit]' \
                        '--categories[List known fact categories]' \
                        '--json[Output as JSON]'
                    ;;
                init)
                    _arguments \
                        '--force[Overwrite existing configuration]' \
                        '--facts[Default fact document path]:facts file:_files' \
                        '--rules[Default rule set path]:rules file:_files'
                    ;;
                completion)
                    _arguments '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_leviathan "$@"
`

// fishCompletionTemplate is the fish completion script for Leviathan.
const fishCompletionTemplate = `# Fish completion script for Leviathan
# Installation:
#   leviathan completion fish > ~/.config/fish/completions/leviathan.fish

complete -c leviathan -f

# Commands
complete -c leviathan -n '__fish_use_subcommand' -a init -d 'Create .leviathan/engine.yaml configuration'
complete -c leviathan -n '__fish_use_subcommand' -a evaluate -d 'Evaluate a rule set over a fact document'
complete -c leviathan -n '__fish_use_subcommand' -a rules -d 'Inspect and validate rule sets'
complete -c leviathan -n '__fish_use_subcommand' -a completion -d 'Generate shell completion script'

# Global flags
complete -c leviathan -l version -d 'Show version and exit'
complete -c leviathan -l config -r -d 'Path to .leviathan/engine.yaml'

# evaluate flags
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l facts -r -d 'Fact document path'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l rules -r -d 'Rule set path'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l json -d 'Output as JSON'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l sarif -r -d 'Write a SARIF report'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l workers -r -d 'Parallel rule evaluation width'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l timeout -r -d 'Per-rule wall-clock budget'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l max-findings -r -d 'Per-rule findings cap'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l no-color -d 'Disable colored output'
complete -c leviathan -n '__fish_seen_subcommand_from evaluate' -l debug -d 'Enable debug logging'

# rules flags
complete -c leviathan -n '__fish_seen_subcommand_from rules' -l rules -r -d 'Rule set path'
complete -c leviathan -n '__fish_seen_subcommand_from rules' -l validate -d 'Validate the rule set and exit'
complete -c leviathan -n '__fish_seen_subcommand_from rules' -l categories -d 'List known fact categories'
complete -c leviathan -n '__fish_seen_subcommand_from rules' -l json -d 'Output as JSON'

# init flags
complete -c leviathan -n '__fish_seen_subcommand_from init' -l force -d 'Overwrite existing configuration'

# completion shells
complete -c leviathan -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish' -d 'Shell'
`

// runCompletion executes the 'completion' CLI command, generating shell
// completion scripts.
//
// Usage:
//
//	leviathan completion [bash|zsh|fish]
//
// Examples:
//
//	leviathan completion bash                  Output bash completion script
//	source <(leviathan completion bash)        Load bash completions in current shell
func runCompletion(args []string) {
	fs := flag.NewFlagSet("completion", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: leviathan completion <shell>

Description:
  Generate shell completion scripts for bash, zsh, or fish.

Arguments:
  shell    Shell type: bash, zsh, or fish (required)

Examples:
  # Load bash completions in current shell
  source <(leviathan completion bash)

  # Install bash completions permanently (Linux)
  leviathan completion bash > /etc/bash_completion.d/leviathan

  # Install zsh completions
  leviathan completion zsh > "${fpath[1]}/_leviathan"

  # Install fish completions
  leviathan completion fish > ~/.config/fish/completions/leviathan.fish

Notes:
  After installing completions, restart your shell or source your rc file.

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	// Validate arguments
	if fs.NArg() != 1 {
		errors.FatalError(errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'leviathan completion bash', 'leviathan completion zsh', or 'leviathan completion fish'",
		), false)
	}

	shell := fs.Arg(0)

	// Generate completion script for the specified shell
	switch shell {
	case "bash":
		fmt.Print(bashCompletionTemplate)
	case "zsh":
		fmt.Print(zshCompletionTemplate)
	case "fish":
		fmt.Print(fishCompletionTemplate)
	default:
		errors.FatalError(errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", shell),
			"Run 'leviathan completion bash', 'leviathan completion zsh', or 'leviathan completion fish'",
		), false)
	}
}

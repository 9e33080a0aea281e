/*
Package revitgen turns natural-language requests into pyRevit scripts for Autodesk Revit.

It composes a system prompt from an embedded library of rules, API notes and reference
scripts, sends it with the user's query to a language model, strips the reply down to
code and vets that code before handing it back: a lint pass catches constructs the
IronPython 2.7 runtime inside Revit cannot run, and an optional compile step with the
real interpreter catches syntax errors.

# Architecture

The Engine is the only entry point. Everything it talks to is a port (see pkg/ports),
so the same pipeline serves the HTTP API, the MCP server and the CLI:

  - Completer: OpenAI, OpenRouter, Anthropic, Gemini or a static replay.
  - SyntaxChecker: IronPython's compile() run in a subprocess.
  - QueryLog: JSON file, Redis list or memory.
  - ScriptCache and DistributedLocker: Redis or memory.

# Usage

	eng, err := revitgen.New(
		revitgen.WithCompleter(completer),
		revitgen.WithChecker(process.NewChecker("ipy")),
		revitgen.WithQueryLog(file.NewQueryLog("logs/ai.json")),
	)
	if err != nil {
		log.Fatal(err)
	}

	script, err := eng.Generate(ctx, "select all walls taller than 3 meters")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(script.Code())
*/
package revitgen

/*
Package prompt holds the system prompt that conditions a language model to write pyRevit
scripts.

The prompt comes in two variants. The basic variant is the rule set alone. The extended
variant appends notes on the Revit API and a handful of complete example scripts that the
model can imitate. All files are embedded in the binary; a directory can overlay any of
them so operators can tune the prompt without rebuilding.

	lib, err := prompt.Load("./prompts")
	system, err := lib.System(prompt.Extended)
*/
package prompt

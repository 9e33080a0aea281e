/*
Package runner implements the interactive loop used by `revitgen chat`.

A Runner reads one query per line, asks a Generator for a script and prints the
cleaned code followed by any diagnostics. It also owns input sanitization, which is
shared by every entry point that accepts free text from users.

# Usage

	r := runner.New(engine,
		runner.WithIO(os.Stdin, os.Stdout),
		runner.WithRenderer(renderMarkdown),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner

package revitgen_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/revitgen"
	"github.com/aretw0/revitgen/pkg/adapters/static"
)

// ExampleEngine_Generate runs the pipeline against a canned model reply.
func ExampleEngine_Generate() {
	completer := static.New("demo", "Here you go:\n```python\n# -*- coding: utf-8 -*-\nfrom pyrevit import revit\nprint(revit.doc.Title)\n```\nEnjoy!")

	eng, err := revitgen.New(revitgen.WithCompleter(completer))
	if err != nil {
		log.Fatal(err)
	}

	script, err := eng.Generate(context.Background(), "print the project title")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(script.Code())
	fmt.Println("valid:", script.Report.Valid())
	// Output:
	// # -*- coding: utf-8 -*-
	// from pyrevit import revit
	// print(revit.doc.Title)
	// valid: true
}

// ExampleEngine_Check vets code written by hand.
func ExampleEngine_Check() {
	eng, err := revitgen.New(revitgen.WithCompleter(static.New("demo")))
	if err != nil {
		log.Fatal(err)
	}

	report, err := eng.Check(context.Background(), "# -*- coding: utf-8 -*-\nfrom pyrevit import revit\nprint(f\"{revit.doc.Title}\")\n")
	if err != nil {
		log.Fatal(err)
	}
	for _, d := range report.Diagnostics {
		fmt.Printf("%s line %d: %s\n", d.Rule, d.Line, d.Severity)
	}
	// Output:
	// f-string line 3: error
}

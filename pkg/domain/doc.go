/*
Package domain contains the core domain models for revitgen.

It defines the entities that flow through the generation pipeline: the completion
request sent to a model, the script extracted from its reply, the diagnostics raised
against that script, and the audit log entry recorded for every query. This package is
kept pure and free of external dependencies like I/O or persistence.

# Key Entities

  - CompletionRequest / Completion: what is sent to and received from a model provider.
  - Script: the cleaned pyRevit code plus its validation outcome.
  - Diagnostic: a single finding from the output-contract lint or the syntax checker.
  - LogEntry: one row of the query audit log.
*/
package domain

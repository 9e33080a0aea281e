/*
Package ports defines the driven ports (interfaces) of the revitgen engine.

These interfaces decouple the generation pipeline from model vendors, storage backends
and the interpreter used for syntax checks.

# Key Interfaces

  - Completer: sends a system prompt and a query to a language model.
  - SyntaxChecker: compiles generated code with the target interpreter.
  - QueryLog: records every query and its outcome.
  - ScriptCache: remembers validated scripts for repeated queries.
  - DistributedLocker: serializes generation of the same query across replicas.
*/
package ports

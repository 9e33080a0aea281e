package ports

import (
	"context"

	"github.com/aretw0/revitgen/pkg/domain"
)

// SyntaxChecker compiles code without running it.
// A script that fails to compile is reported through SyntaxResult, not through the error;
// the error is reserved for failures of the checker itself.
type SyntaxChecker interface {
	Check(ctx context.Context, code string) (domain.SyntaxResult, error)
}

package infer

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/nilp0inter/grace/internal/config"
)

var debugConfig = &spew.ConfigState{Indent: "  ", DisableMethods: false, SortKeys: true}

// debugDump writes the current context to stderr when GRACE_DEBUG is set.
// The dump includes entry structure, not just pretty forms, which is what
// you want when chasing an ordering bug.
func (inf *Inferrer) debugDump(stage string) {
	if os.Getenv(config.DebugEnvVar) == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "grace: %s\n", stage)
	fmt.Fprintf(os.Stderr, "grace: context %s\n", inf.ctx)
	fmt.Fprint(os.Stderr, debugConfig.Sdump(inf.ctx))
}

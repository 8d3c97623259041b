// Command notarverify verifies detached CMS signatures and PAdES-embedded
// PDF signatures offline, against operator-supplied trust anchors.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/blastrider/notar-verify/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command oma-resolved resolves declarative package blueprints against
// Debian-family repository metadata and emits an ordered action plan.
package main

import "avular-packages/internal/cli"

func main() {
	cli.Execute()
}

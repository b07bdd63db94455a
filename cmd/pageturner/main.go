// Pageturner captures a screen region, advances the content, waits, and
// repeats until a termination policy fires.
package main

import "github.com/fennwick/pageturner/internal/cli"

func main() {
	cli.Execute()
}

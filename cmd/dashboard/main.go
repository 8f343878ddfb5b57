// Command dashboard serves and reports the Day 1 to Day 2 accuracy
// comparison of experimental groups.
package main

import "github.com/jgtann/gdp-dashboard/internal/cli"

func main() {
	cli.Execute()
}

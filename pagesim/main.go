// Command pagesim compares page-replacement algorithms by the number of page
// faults they cause.
package main

import "github.com/sarchlab/pagesim/pagesim/cmd"

func main() {
	cmd.Execute()
}

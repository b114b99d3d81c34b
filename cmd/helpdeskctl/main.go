// Command helpdeskctl is the operator tool for the helpdesk service: schema
// migrations, period reports and local development tokens.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command crm is the command-line front end of the CRM. It talks to the
// database directly and keeps the session token in a local file.
package main

import "github.com/diewo77/go-crm/cmd/crm/commands"

func main() {
	commands.Execute()
}

// Command drrms-migrate applies versioned SQL migrations to the DRRMS database.
package main

import "github.com/aqasim81/drrms-migrate/internal/cli"

func main() {
	cli.Execute()
}

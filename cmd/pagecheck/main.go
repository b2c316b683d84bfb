// Command pagecheck checks an HTML page for existence, W3C validity,
// best-practice lint rules and consistent indentation.
package main

import "github.com/papapumpkin/pagecheck/cmd"

func main() {
	cmd.Execute()
}

// Package main provides the defimport CLI for validating, importing and
// exporting XML definitions.
package main

func main() {
	Execute()
}

package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"adr.app/ledger/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}

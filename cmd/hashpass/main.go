package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gestaozabele/fireguard/internal/auth"
)

func main() {
	verify := flag.String("verify", "", "valor armazenado a conferir contra a senha")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "uso: hashpass <senha>")
		fmt.Fprintln(os.Stderr, "     hashpass -verify '<valor armazenado>' <senha>")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	password := flag.Arg(0)

	if *verify != "" {
		ok, err := auth.Verify(password, *verify)
		if err != nil {
			fmt.Fprintf(os.Stderr, "erro ao verificar: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("não confere")
			os.Exit(2)
		}
		fmt.Println("confere")
		return
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao gerar hash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

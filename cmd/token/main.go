// Command token emite un JWT para la API de administración.
//
//	go run ./cmd/token -sub operador -role admin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/price-catalog/pkg/config"
	"github.com/jhoicas/price-catalog/pkg/jwt"
)

func main() {
	sub := flag.String("sub", "admin", "subject del token")
	role := flag.String("role", jwt.RoleAdmin, "rol")
	minutes := flag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *sub, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generar token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}

// Commande hashpassword : produit la valeur de ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpassword -password 'secret'
//	echo 'secret' | go run ./cmd/hashpassword
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"maeva_back_end/internal/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	password := flag.String("password", "", "mot de passe à hacher (lu sur l'entrée standard si absent)")
	flag.Parse()

	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logrus.WithError(err).Fatal("❌ Lecture du mot de passe impossible")
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	hash, err := utils.HashPassword(*password)
	if err != nil {
		logrus.WithError(err).Fatal("❌ Hachage impossible")
	}
	fmt.Println(hash)
}

package main

import (
	"bufio"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// 生成 OWNER_PASSWORD_HASH，密码为空时随机生成一个
func main() {
	fromStdin := flag.Bool("stdin", false, "read the password from stdin")
	flag.Parse()

	password := ""
	if *fromStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			log.Fatal("读取密码失败:", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	generated := false
	if password == "" {
		var err error
		password, err = randomPassword()
		if err != nil {
			log.Fatal("生成密码失败:", err)
		}
		generated = true
	}

	hash, err := ownerHash(password)
	if err != nil {
		log.Fatal("密码加密失败:", err)
	}

	if generated {
		fmt.Fprintln(os.Stderr, "生成的主人密码:", password)
	}
	fmt.Printf("OWNER_PASSWORD_HASH=%s\n", hash)
}

func ownerHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 15)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
)

// Both the signing and the encryption secret are expected to be base64
// encoded 32 byte values, so one tool serves both
const SecretKeyBytesLen = 32

func main() {
	b := make([]byte, SecretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(b))
}

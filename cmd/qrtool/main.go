// cmd/qrtool/main.go — generates a QR token and payload for a unique ID.
// Handy for testing the scanner without going through the email flow.
// Usage: go run ./cmd/qrtool SEMNASTI2025-042 [out.png]
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/infra"
	"github.com/hmti-techhub/chekin-ticket-semnasti2025/internal/qr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: qrtool <unique-id> [out.png]")
		os.Exit(2)
	}
	uniqueID := os.Args[1]

	token, err := qr.GenerateHash(uniqueID)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	payload := qr.EncodePayload(uniqueID, token)

	fmt.Println("token:  ", token)
	fmt.Println("payload:", payload)

	if len(os.Args) >= 3 {
		png, err := infra.RenderQRPNG(payload)
		if err != nil {
			log.Fatalf("render png: %v", err)
		}
		if err := os.WriteFile(os.Args[2], png, 0o644); err != nil {
			log.Fatalf("write png: %v", err)
		}
		fmt.Println("wrote", os.Args[2])
	}
}

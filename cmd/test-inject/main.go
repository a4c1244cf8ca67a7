// Command test-inject is a manual test for clipboard paste injection.
// It waits 3 seconds, then copies test text and sends the paste shortcut.
// Focus a text editor before the countdown finishes.
//
// Usage:
//
//	go run ./cmd/test-inject [--settle 200ms]
package main

import (
	"flag"
	"fmt"
	"time"

	"holdscribe/internal/inject"
)

func main() {
	settle := flag.Duration("settle", 200*time.Millisecond, "delay between clipboard write and paste")
	flag.Parse()

	text := "Hello from holdscribe!"

	fmt.Printf("Will paste %q in 3 seconds...\n", text)
	fmt.Println("Focus a text editor now!")

	for i := 3; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	inj := inject.New()
	if err := inj.SetText(text); err != nil {
		fmt.Printf("Clipboard error: %v\n", err)
		return
	}
	time.Sleep(*settle)
	if err := inj.SendPasteShortcut(); err != nil {
		fmt.Printf("Paste error: %v (text is still on the clipboard)\n", err)
		return
	}

	fmt.Println("\nDone!")
}

// Command judydump is a small demonstration driver for the judy trie: it
// inserts a handful of keys, walks them in order, looks a few up, and
// deletes one, printing what it did at each step.
package main

import (
	"fmt"
	"log"

	"github.com/TomTonic/judy"
)

func main() {
	h := judy.Open(64, 0)
	defer h.Close()

	fruits := map[string]string{
		"apple":  "red",
		"banana": "yellow",
		"grape":  "purple",
		"orange": "orange",
		"cherry": "red",
	}

	fmt.Println("inserting key-value pairs...")
	colorOf := map[string]string{}
	for key, color := range fruits {
		cell, err := h.Cell(judy.FromString(key))
		if err != nil {
			log.Fatalf("insert %s: %v", key, err)
		}
		id := uint64(len(colorOf) + 1)
		*cell = id
		colorOf[key] = color
	}

	fmt.Println("\ntrie contents in key order:")
	buf := make([]byte, 64)
	for cell := h.First(); cell != nil; cell = h.Nxt() {
		n := h.Key(buf)
		key := string(buf[:n])
		fmt.Printf("%s -> %s\n", key, fruits[key])
	}

	fmt.Println("\nsearch results:")
	for _, key := range []string{"apple", "banana", "mango"} {
		if cell, err := h.Slot(judy.FromString(key)); err == nil && cell != nil {
			fmt.Printf("found: %s -> %s\n", key, fruits[key])
		} else {
			fmt.Printf("not found: %s\n", key)
		}
	}

	fmt.Println("\ndeleting apple...")
	if _, err := h.Slot(judy.FromString("apple")); err != nil {
		log.Fatalf("locate apple: %v", err)
	}
	if _, err := h.Del(); err != nil {
		log.Fatalf("delete apple: %v", err)
	}
	if cell, err := h.Slot(judy.FromString("apple")); err == nil && cell == nil {
		fmt.Println("apple successfully deleted")
	} else {
		fmt.Println("apple still exists")
	}

	stats := h.Stats()
	fmt.Printf("\narena: %d allocations, %d reuses\n", stats.Allocations, stats.Reuses)
}

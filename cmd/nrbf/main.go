package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/driedpampas/nrbf-parser/interleaved"
	"github.com/driedpampas/nrbf-parser/nrbf"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Path to NRBF stream (plain or gzip), - for stdin")
		outFile     = flag.String("out", "", "Re-encode the records to this path")
		cborFile    = flag.String("cbor", "", "Write the interleaved tree as CBOR to this path")
		asJSON      = flag.Bool("json", false, "Print the interleaved tree as JSON")
		check       = flag.Bool("check", false, "Verify the decode/encode round trip is byte-exact")
		interactive = flag.Bool("i", false, "Interactive record inspector")
		verbose     = flag.Bool("v", false, "Verbose decode/encode logging")
	)
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: nrbf -in <file> [-json] [-out file] [-cbor file] [-check]")
		fmt.Fprintln(os.Stderr, "       nrbf -in <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			nrbf.SetLogger(logger)
			defer logger.Sync()
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*inFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*inFile, *outFile, *cborFile, *asJSON, *check); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readStream loads the input, transparently decompressing gzip streams.
func readStream(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
	}
	return data, nil
}

func run(inFile, outFile, cborFile string, asJSON, check bool) error {
	data, err := readStream(inFile)
	if err != nil {
		return err
	}

	msg, err := nrbf.DecodeMessage(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	fmt.Printf("Stream: %s (%d bytes)\n", inFile, len(data))
	fmt.Printf("Records: %d\n", len(msg.Records))
	fmt.Printf("Objects: %d\n", len(msg.ObjectIDs()))
	fmt.Printf("Libraries: %d\n", len(msg.LibraryIDs()))
	if h := msg.Header(); h != nil {
		fmt.Printf("Root id: %d (format %d.%d)\n", h.RootID, h.MajorVersion, h.MinorVersion)
	}

	if check {
		var buf bytes.Buffer
		if err := nrbf.EncodeMessage(&buf, msg); err != nil {
			return fmt.Errorf("re-encode: %w", err)
		}
		if diff := firstDifference(data, buf.Bytes()); diff >= 0 {
			return fmt.Errorf("round trip differs at offset %d (decoded %d bytes, re-encoded %d)",
				diff, len(data), buf.Len())
		}
		fmt.Println("Round trip: byte-exact")
	}

	if asJSON {
		out, err := interleaved.MarshalIndent(msg.Records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		fmt.Println(string(out))
	}

	if cborFile != "" {
		out, err := interleaved.MarshalCBOR(msg.Records)
		if err != nil {
			return fmt.Errorf("marshal cbor: %w", err)
		}
		if err := os.WriteFile(cborFile, out, 0o644); err != nil {
			return fmt.Errorf("write cbor: %w", err)
		}
		fmt.Printf("CBOR tree: %s (%d bytes)\n", cborFile, len(out))
	}

	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		if err := nrbf.EncodeMessage(f, msg); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		fmt.Printf("Re-encoded: %s\n", outFile)
	}

	return nil
}

// firstDifference returns the first offset where a and b disagree, or -1.
func firstDifference(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

// Command simulator drives a single sign request through an Orchestrator
// from the command line, for exercising the parser and review-screen output
// without real hardware. It always accepts the review screen it produces;
// it is a development aid, not a wallet.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/trilitech/tezos-ledger-parser/apdu"
	"github.com/trilitech/tezos-ledger-parser/signer"
)

type options struct {
	Curve        byte   `short:"c" long:"curve" description:"curve code (0x00 ed25519, 0x01 secp256k1, 0x02 P-256, 0x03 bip32-ed25519)" default:"0"`
	Path         string `short:"p" long:"path" description:"BIP32 derivation path, e.g. 44'/1729'/0'/0'" default:"44'/1729'/0'/0'"`
	Operation    string `short:"o" long:"operation" description:"hex-encoded operation bytes, MAGIC byte through the end" required:"true"`
	WithHash     bool   `long:"with-hash" description:"request SignWithHash instead of plain Sign"`
	BlindSign    bool   `long:"blind" description:"force blind signing regardless of the settings file"`
	SettingsPath string `short:"s" long:"settings" description:"path to a settings JSON file" default:""`
	ChunkSize    int    `long:"chunk-size" description:"split the operation into packets of this many bytes" default:"235"`
}

func encodePath(s string) ([]byte, error) {
	parts := strings.Split(s, "/")
	if len(parts) == 0 || len(parts) > 10 {
		return nil, fmt.Errorf("path must have 1-10 components")
	}
	out := []byte{byte(len(parts))}
	for _, part := range parts {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		part = strings.TrimSuffix(strings.TrimSuffix(part, "'"), "h")
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad path component %q: %w", part, err)
		}
		v := uint32(n)
		if hardened {
			v |= 0x80000000
		}
		out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return out, nil
}

type stdoutDisplay struct{}

func (stdoutDisplay) StreamPush(name, value string, complex bool) (int, error) {
	fmt.Printf("  %-16s %s\n", name+":", value)
	return len(value), nil
}

func chunk(data []byte, size int) [][]byte {
	var out [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	if len(out) == 0 {
		out = [][]byte{{}}
	}
	return out
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		return err
	}

	pathBytes, err := encodePath(opts.Path)
	if err != nil {
		return err
	}
	operation, err := hex.DecodeString(opts.Operation)
	if err != nil {
		return fmt.Errorf("bad --operation hex: %w", err)
	}

	var store signer.SettingsStore
	if opts.SettingsPath != "" {
		store = signer.FileSettingsStore{Path: opts.SettingsPath}
	}
	var settings signer.Settings
	if store != nil {
		settings, err = store.Load()
		if err != nil {
			return err
		}
	}
	if opts.BlindSign {
		settings.BlindSigning = true
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	orch := signer.New(signer.NewBlake2bHasher(), signer.ReferenceSigner{}, stdoutDisplay{}, settings, logger)

	ins := apdu.InsSign
	if opts.WithHash {
		ins = apdu.InsSignWithHash
	}

	first := apdu.Request{Ins: ins, P1: 0x00, P2: opts.Curve, Data: pathBytes}
	status, _ := orch.HandleSign(first, opts.WithHash)
	if status != apdu.SWOK {
		return fmt.Errorf("first packet rejected: %s", status)
	}

	packets := chunk(operation, opts.ChunkSize)
	for i, packet := range packets {
		p1 := byte(0x01)
		if i == len(packets)-1 {
			p1 |= 0x80
		}
		req := apdu.Request{Ins: ins, P1: p1, P2: opts.Curve, Data: packet}
		status, _ = orch.HandleSign(req, opts.WithHash)
		if status != apdu.SWOK {
			return fmt.Errorf("data packet %d rejected: %s", i, status)
		}
	}

	status, payload := orch.Accept()
	if status != apdu.SWOK {
		return fmt.Errorf("accept rejected: %s", status)
	}
	fmt.Printf("signature: %s\n", hex.EncodeToString(payload))
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "simulator:", err)
		os.Exit(1)
	}
}

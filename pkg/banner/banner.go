package banner

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"mimicbot/pkg/config"
	"mimicbot/pkg/store"
)

const banner = `
███╗   ███╗██╗███╗   ███╗██╗ ██████╗██████╗  ██████╗ ████████╗
████╗ ████║██║████╗ ████║██║██╔════╝██╔══██╗██╔═══██╗╚══██╔══╝
██╔████╔██║██║██╔████╔██║██║██║     ██████╔╝██║   ██║   ██║
██║╚██╔╝██║██║██║╚██╔╝██║██║██║     ██╔══██╗██║   ██║   ██║
██║ ╚═╝ ██║██║██║ ╚═╝ ██║██║╚██████╗██████╔╝╚██████╔╝   ██║
╚═╝     ╚═╝╚═╝╚═╝     ╚═╝╚═╝ ╚═════╝╚═════╝  ╚═════╝    ╚═╝
`

// PrintWithEff prints the banner using an EffectiveConfigResult which
// provides the resolved addr, corpus path and config source.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	var addr = eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	var dbPath = eff.DBPath
	if dbPath == "" && eff.Config != nil {
		dbPath = eff.Config.Server.DBPath
	}
	var src = eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Ops:      %s\n", addr)
	fmt.Printf("Corpus:   %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	fmt.Println("\n== Corpus =====================================================")
	if n, err := store.CountRecords(); err == nil {
		fmt.Printf("Records:  %s\n", humanize.Comma(n))
	} else {
		fmt.Println("Records:  unavailable")
	}
	fmt.Printf("On disk:  %s\n", humanize.Bytes(store.DBSizeBytes()))

	if eff.Config != nil {
		gen := eff.Config.Generator
		fmt.Println("\n== Generator ==================================================")
		fmt.Printf("Length:   %d..%d chars, %d words max per walk\n", gen.MinLength, gen.MaxLength, gen.MaxWords)
		fmt.Printf("Sessions: %s ttl, sweep %q\n", eff.Config.Session.TTL.Duration(), eff.Config.Session.SweepCron)
		if n := len(eff.Config.Bot.ExcludedAuthors); n > 0 {
			fmt.Printf("Excluded: %d author(s)\n", n)
		}
	}

	fmt.Println("\n== Ops ========================================================")
	fmt.Printf("curl 'http://localhost%s/healthz'\n", portSuffix(addr))
	fmt.Printf("curl 'http://localhost%s/metrics'\n", portSuffix(addr))

	fmt.Println("\n== Logs: =================================================")
}

// portSuffix reduces a listen address to the ":port" part usable in a
// localhost example URL.
func portSuffix(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return addr
}

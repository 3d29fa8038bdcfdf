// Command orderlens-rulecheck validates a rules.yaml before it is embedded
//
//	orderlens-rulecheck -file internal/core/rulepack/rules.yaml
//
// Exit status is 1 when the file does not compile
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"orderlens/internal/core/rulepack"
)

func main() {
	file := flag.String("file", "", "rule file to check; empty checks the embedded copy")
	flag.Parse()

	src := rulepack.Embedded()
	name := "embedded"
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		src, name = b, *file
	}

	p, err := rulepack.Parse(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
	summarize(os.Stdout, name, p)
}

func summarize(w io.Writer, name string, p *rulepack.Pack) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "file\t%s\n", name)
	fmt.Fprintf(tw, "version\t%d\n", p.Version)
	fmt.Fprintf(tw, "seller aliases\t%d\n", len(p.SellerAliases))
	fmt.Fprintf(tw, "seller fragments\t%d\n", len(p.SellerFragments))
	fmt.Fprintf(tw, "seller keywords\t%d\n", len(p.SellerKeywords))
	for _, c := range p.Categories {
		fmt.Fprintf(tw, "category %s\t%d patterns\n", c.Name, len(c.Patterns))
	}
	fmt.Fprintf(tw, "deadline patterns\t%d\n", len(p.Deadlines))
	fmt.Fprintf(tw, "item names\t%d..%d runes, %d stopwords, %d reject patterns\n",
		p.Items.MinLen, p.Items.MaxLen, len(p.Items.Stop), len(p.Items.Reject))
	fmt.Fprintf(tw, "customer names\t%d..%d runes, %d stopwords\n",
		p.Customers.MinLen, p.Customers.MaxLen, len(p.Customers.Stop))
}

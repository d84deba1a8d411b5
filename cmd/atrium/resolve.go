package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stencil-hq/atrium/pkg/cli"
	"stencil-hq/atrium/pkg/telemetry/logging"
	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/conditions"
	"stencil-hq/atrium/pkg/template/engine"
	"stencil-hq/atrium/pkg/template/store"
)

var resolveFlags struct {
	file         string
	contextFile  string
	location     string
	format       string
	frontPage    bool
	search       bool
	notFound     bool
	signedIn     bool
	resourceType string
	userAgent    string
	locale       string
	query        []string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a request context against a template file",
	Long: `Resolve a synthetic request context against a template file and print
the selected template and render plan.

The request context can be supplied as a JSON file with --context,
refined with individual flags, or built from flags alone.

Examples:
  # Resolve the front page
  atrium resolve --file templates.yaml --front-page

  # Resolve a full context from a file
  atrium resolve --file templates.yaml --context request.json

  # Resolve the header slot for a mobile visitor
  atrium resolve --file templates.yaml --location header \
    --user-agent "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"

  # JSON output
  atrium resolve --file templates.yaml --front-page --format json`,
	RunE: resolveContext,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveFlags.file, "file", "f", "", "template file or directory (required)")
	resolveCmd.Flags().StringVar(&resolveFlags.contextFile, "context", "", "request context file (json)")
	resolveCmd.Flags().StringVar(&resolveFlags.location, "location", "", "resolve a slot instead: header, footer")
	resolveCmd.Flags().StringVar(&resolveFlags.format, "format", "text", "output format: text, json")
	resolveCmd.Flags().BoolVar(&resolveFlags.frontPage, "front-page", false, "mark the context as the front page")
	resolveCmd.Flags().BoolVar(&resolveFlags.search, "search", false, "mark the context as search results")
	resolveCmd.Flags().BoolVar(&resolveFlags.notFound, "not-found", false, "mark the context as a 404")
	resolveCmd.Flags().BoolVar(&resolveFlags.signedIn, "signed-in", false, "mark the visitor as signed in")
	resolveCmd.Flags().StringVar(&resolveFlags.resourceType, "resource-type", "", "singular resource type")
	resolveCmd.Flags().StringVar(&resolveFlags.userAgent, "user-agent", "", "visitor user agent")
	resolveCmd.Flags().StringVar(&resolveFlags.locale, "locale", "", "visitor locale, e.g. en_US")
	resolveCmd.Flags().StringArrayVar(&resolveFlags.query, "query", nil, "query parameter, key=value (repeatable)")

	resolveCmd.MarkFlagRequired("file")
}

func resolveContext(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(resolveFlags.format)
	if err != nil {
		return err
	}

	rctx, err := buildRequestContext()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: logLevelForVerbosity(), Format: "text", Writer: os.Stderr})
	if err != nil {
		return err
	}

	source, err := store.NewFileSource(resolveFlags.file, logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	registry := conditions.NewRegistry(conditions.WithLogger(logger), conditions.WithCommerce())
	resolver := engine.NewResolver(source, engine.NewEvaluator(registry, logger), engine.WithLogger(logger))

	ctx := context.Background()

	if resolveFlags.location != "" {
		location := template.Category(resolveFlags.location)
		if location != template.CategoryHeader && location != template.CategoryFooter {
			return fmt.Errorf("unsupported location %q: want header or footer", resolveFlags.location)
		}
		id := resolver.ResolveForLocation(ctx, rctx, location)
		if format == cli.FormatJSON {
			return cli.NewFormatter(format).FormatTo(os.Stdout, map[string]any{"location": location, "template_id": id})
		}
		if id == "" {
			fmt.Printf("No %s template matched\n", location)
		} else {
			fmt.Printf("Matched %s template: %s\n", location, id)
		}
		return nil
	}

	decision := resolver.Resolve(ctx, rctx)
	plan := engine.Route(decision)

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, map[string]any{"decision": decision, "plan": plan})
	}

	if !decision.Matched() {
		fmt.Println("No template matched")
		return nil
	}
	fmt.Printf("Matched template: %s\n", decision.TemplateID)
	fmt.Printf("Category:         %s\n", decision.Category)
	fmt.Printf("Strategy:         %s\n", plan.Strategy)
	if len(plan.BodyClasses) > 0 {
		fmt.Printf("Body classes:     %s\n", strings.Join(plan.BodyClasses, " "))
	}
	return nil
}

func buildRequestContext() (*template.RequestContext, error) {
	rctx := &template.RequestContext{}

	if resolveFlags.contextFile != "" {
		data, err := os.ReadFile(resolveFlags.contextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		if err := json.Unmarshal(data, rctx); err != nil {
			return nil, fmt.Errorf("failed to parse context file: %w", err)
		}
	}

	if resolveFlags.frontPage {
		rctx.IsFrontPage = true
	}
	if resolveFlags.search {
		rctx.IsSearch = true
	}
	if resolveFlags.notFound {
		rctx.IsNotFound = true
	}
	if resolveFlags.signedIn {
		rctx.SignedIn = true
	}
	if resolveFlags.resourceType != "" {
		rctx.IsSingular = true
		rctx.ResourceType = resolveFlags.resourceType
	}
	if resolveFlags.userAgent != "" {
		rctx.UserAgent = resolveFlags.userAgent
	}
	if resolveFlags.locale != "" {
		rctx.Locale = resolveFlags.locale
	}
	for _, pair := range resolveFlags.query {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			return nil, fmt.Errorf("invalid query parameter %q: want key=value", pair)
		}
		if rctx.QueryParams == nil {
			rctx.QueryParams = url.Values{}
		}
		rctx.QueryParams.Add(key, value)
	}

	return rctx, nil
}

func logLevelForVerbosity() string {
	if verbose {
		return "debug"
	}
	return "warn"
}

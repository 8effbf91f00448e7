package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rhyru9/osgit/config"
	"github.com/rhyru9/osgit/core"
	"github.com/rhyru9/osgit/paths"
	"github.com/rhyru9/osgit/reporting"
	"github.com/rhyru9/osgit/search"
)

const (
	Version = "v0.0.1"
	Author  = "rhyru9"
)

var rootCmd = &cobra.Command{
	Use:   "osgit",
	Short: "GitHub OSINT tool for subdomain discovery and repository path extraction",
	Long:  core.Banner + "\nGitHub OSINT tool by https://github.com/" + Author + " " + Version,
	Example: `  osgit token add -t ghp_your_token
  osgit sub -d example.com -o results.txt
  osgit path -orb 'user,repo,main' -o paths.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		core.PrintBanner(Version)
		cmd.Help()
	},
}

// =============================================================================
// token subcommand: manage the stored GitHub tokens
// =============================================================================
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage GitHub tokens",
	Long:  "Manage GitHub Personal Access Tokens for API authentication",
	Example: `  osgit token add -t ghp_your_token_here
  osgit token list
  osgit token remove -t ghp_token_to_remove`,
}

var tokenAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new GitHub token",
	Run: func(cmd *cobra.Command, args []string) {
		token, _ := cmd.Flags().GetString("token")
		token = strings.TrimSpace(token)
		if token == "" {
			color.Red("[-] Token cannot be empty")
			return
		}
		if !config.LooksLikePAT(token) {
			core.Warning("Warning: Token format doesn't match GitHub PAT patterns")
			core.Warning("Expected: ghp_xxx, github_pat_xxx, or 40-char classic token")
		}

		store, err := openStore()
		if err != nil {
			color.Red("[-] %v", err)
			return
		}
		added, err := store.Add(token)
		if err != nil {
			color.Red("[-] Failed to add token: %v", err)
			return
		}
		if added {
			core.Success("Token added successfully!")
		} else {
			core.Warning("Token already exists in configuration")
		}
	},
}

var tokenRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a GitHub token",
	Run: func(cmd *cobra.Command, args []string) {
		token, _ := cmd.Flags().GetString("token")

		store, err := openStore()
		if err != nil {
			color.Red("[-] %v", err)
			return
		}
		removed, err := store.Remove(token)
		if err != nil {
			color.Red("[-] Failed to remove token: %v", err)
			return
		}
		if removed {
			core.Success("Token removed successfully!")
		} else {
			core.Warning("Token not found in configuration")
		}
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured tokens",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			color.Red("[-] %v", err)
			return
		}
		tokens, err := store.Tokens()
		if err != nil {
			color.Red("[-] %v", err)
			return
		}
		if len(tokens) == 0 {
			core.Warning("No tokens configured")
			core.Info("Use: osgit token add -t YOUR_TOKEN")
			return
		}

		core.Success("Configured tokens (%s):", store.Path())
		rows := make([][]string, 0, len(tokens))
		for i, t := range tokens {
			rows = append(rows, []string{strconv.Itoa(i + 1), config.Mask(t)})
		}
		reporting.PrintTable(color.Output, []string{"#", "Token"}, rows)
	},
}

// =============================================================================
// sub subcommand: subdomain discovery through GitHub code search
// =============================================================================
var subCmd = &cobra.Command{
	Use:   "sub",
	Short: "Find subdomains using GitHub search",
	Long:  "Discover subdomains by searching through GitHub repositories",
	Example: `  osgit sub -d example.com -o results.txt
  osgit sub -d example.com -e -s -v`,
	Run: runSub,
}

// =============================================================================
// path subcommand: list paths of a repository tree
// =============================================================================
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Extract paths from GitHub repository",
	Long:  "Extract file paths and directory structures from public GitHub repositories",
	Example: `  osgit path -orb 'owner,repo,main' -o paths.txt
  osgit path -orb 'user,project,branch' -o output.txt -s`,
	Run: runPath,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("osgit %s by %s\n", Version, Author)
	},
}

func init() {
	// ===== TOKEN FLAGS =====
	tokenAddCmd.Flags().StringP("token", "t", "", "GitHub Personal Access Token (required)")
	tokenAddCmd.MarkFlagRequired("token")
	tokenRemoveCmd.Flags().StringP("token", "t", "", "GitHub token to remove (required)")
	tokenRemoveCmd.MarkFlagRequired("token")
	tokenCmd.AddCommand(tokenAddCmd, tokenRemoveCmd, tokenListCmd)

	// ===== SUB FLAGS =====
	subCmd.Flags().StringP("domain", "d", "", "Target domain to search for (required)")
	subCmd.MarkFlagRequired("domain")
	subCmd.Flags().BoolP("extend", "e", false, "Extended search for *.parent-domain patterns")
	subCmd.Flags().BoolP("source", "s", false, "Show source URLs where subdomains are found")
	subCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
	subCmd.Flags().StringP("output", "o", "", "Output file to save results")
	subCmd.Flags().Bool("json", false, "Write the output file as JSON lines")
	subCmd.Flags().StringP("token", "t", "", "GitHub token to use (overrides config)")
	subCmd.Flags().IntP("concurrency", "c", search.DefaultConcurrency, "Files fetched at once per page")
	subCmd.Flags().Int("max-pages", search.DefaultMaxPages, "Pages requested per search mode (0 = no limit)")
	subCmd.Flags().Float64("search-rate", 0, "Search requests per minute per token (0 = unpaced)")
	subCmd.Flags().Bool("random-tls", false, "Randomize the TLS fingerprint of raw content fetches")
	subCmd.Flags().StringP("json-export", "j", "", "Export run report to JSON file")
	subCmd.Flags().String("jsonl-export", "", "Export findings to JSON Lines file")
	subCmd.Flags().String("csv-export", "", "Export findings to CSV file")
	subCmd.Flags().String("html-report", "", "Write an HTML report of the run")
	subCmd.Flags().String("log", "", "Log output file")

	// ===== PATH FLAGS =====
	pathCmd.Flags().String("orb", "", "Repository info as comma-separated OWNER,REPO,BRANCH (required)")
	pathCmd.MarkFlagRequired("orb")
	pathCmd.Flags().StringP("output", "o", "", "Output filename to save results (required)")
	pathCmd.MarkFlagRequired("output")
	pathCmd.Flags().BoolP("full-paths", "s", false, "Extract full file paths instead of individual segments")
	pathCmd.Flags().StringP("token", "t", "", "GitHub token to use (optional)")

	rootCmd.AddCommand(tokenCmd, subCmd, pathCmd, versionCmd)
}

func runSub(cmd *cobra.Command, args []string) {
	domain, _ := cmd.Flags().GetString("domain")
	extended, _ := cmd.Flags().GetBool("extend")
	showSource, _ := cmd.Flags().GetBool("source")
	verbose, _ := cmd.Flags().GetBool("verbose")
	outputFile, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	tokenFlag, _ := cmd.Flags().GetString("token")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	searchRate, _ := cmd.Flags().GetFloat64("search-rate")
	randomTLS, _ := cmd.Flags().GetBool("random-tls")
	jsonReport, _ := cmd.Flags().GetString("json-export")
	jsonlReport, _ := cmd.Flags().GetString("jsonl-export")
	csvReport, _ := cmd.Flags().GetString("csv-export")
	htmlReport, _ := cmd.Flags().GetString("html-report")
	logFile, _ := cmd.Flags().GetString("log")

	level := reporting.INFO
	if verbose {
		level = reporting.DEBUG
	}
	logger, err := reporting.NewLogger(logFile, level, false)
	if err != nil {
		color.Red("[-] %v", err)
		return
	}
	defer logger.Close()

	logger.Info("Starting subdomain discovery for: %s", domain)

	query, err := search.BuildQuery(domain, extended)
	if err != nil {
		logger.Error("%v", err)
		return
	}

	store, err := openStore()
	if err != nil {
		logger.Error("%v", err)
		return
	}
	tokens, from, err := config.ResolveTokens(tokenFlag, store)
	if err != nil {
		logger.Error("%v", err)
		return
	}
	if len(tokens) == 0 {
		logger.Error("No GitHub tokens configured. Use 'osgit token add -t YOUR_TOKEN'")
		return
	}

	out, err := core.NewOutput(outputFile, jsonOutput, false)
	if err != nil {
		logger.Error("Cannot create output file: %v", err)
		return
	}
	defer out.Close()
	if outputFile != "" {
		logger.Success("Output will be saved to: %s", outputFile)
	}

	fetcher, err := search.NewCollyFetcher(search.FetcherOptions{
		Concurrency: concurrency,
		RandomTLS:   randomTLS,
		Logger:      logger.WithModule("fetch"),
	})
	if err != nil {
		logger.Error("%v", err)
		return
	}
	client := search.NewClient(search.ClientOptions{
		UserAgent:         "osgit/" + Version,
		RequestsPerMinute: searchRate,
	}, logger)

	session, err := search.NewSession(search.Options{
		Query:       query,
		ShowSource:  showSource,
		Tokens:      tokens,
		Concurrency: concurrency,
		MaxPages:    maxPages,
		Client:      client,
		Fetcher:     fetcher,
		Output:      out,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("%v", err)
		return
	}

	logger.Debug("Search Query: %s", session.Query().Search)
	logger.Debug("Domain Regexp: %s", session.Query().Pattern)
	logger.Debug("Tokens available: %d (from %s)", len(tokens), from)

	ctx, stop := interruptContext()
	defer stop()

	res, err := session.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println()
		logger.Warn("Operation cancelled by user")
	} else if err != nil {
		logger.Error("%v", err)
	}

	if err := out.Close(); err != nil {
		logger.Error("Failed to close output file: %v", err)
	}

	logger.Success("Discovery completed!")
	logger.Success("Total unique subdomains found: %d", res.Unique)
	if outputFile != "" {
		logger.Success("Results saved to: %s", outputFile)
	}
	if verbose {
		printRunStats(res)
	}

	if jsonReport != "" {
		export := reporting.JSONExport{
			Version:    Version,
			Target:     query.Domain,
			Extended:   extended,
			Stats:      res.Stats,
			Subdomains: core.SortedUnique(res.Subdomains),
			Findings:   res.Findings,
		}
		if err := reporting.ExportJSON(jsonReport, export, res.Duration); err != nil {
			logger.Error("JSON export failed: %v", err)
		} else {
			logger.Success("JSON export: %s", jsonReport)
		}
	}
	if jsonlReport != "" {
		if err := reporting.ExportJSONL(jsonlReport, res.Findings); err != nil {
			logger.Error("JSONL export failed: %v", err)
		} else {
			logger.Success("JSONL export: %s", jsonlReport)
		}
	}
	if csvReport != "" {
		if err := reporting.ExportCSV(csvReport, res.Findings); err != nil {
			logger.Error("CSV export failed: %v", err)
		} else {
			logger.Success("CSV export: %s", csvReport)
		}
	}
	if htmlReport != "" {
		end := time.Now().UTC()
		report := &reporting.HTMLReport{
			Target:    query.Domain,
			Extended:  extended,
			StartTime: end.Add(-res.Duration),
			EndTime:   end,
			Findings:  res.Findings,
			Stats:     res.Stats,
		}
		if err := report.Generate(htmlReport); err != nil {
			logger.Error("HTML report failed: %v", err)
		} else {
			logger.Success("HTML report: %s", htmlReport)
		}
	}
}

func runPath(cmd *cobra.Command, args []string) {
	orb, _ := cmd.Flags().GetString("orb")
	outputFile, _ := cmd.Flags().GetString("output")
	fullPaths, _ := cmd.Flags().GetBool("full-paths")
	tokenFlag, _ := cmd.Flags().GetString("token")

	logger, _ := reporting.NewLogger("", reporting.INFO, false)
	defer logger.Close()

	logger.Info("Starting path extraction...")

	repo, err := paths.ParseORB(orb)
	if err != nil {
		logger.Error("ORB format error: %v", err)
		logger.Warn("Expected format: 'owner,repo,branch' (e.g., 'microsoft,vscode,main')")
		return
	}

	token := strings.TrimSpace(tokenFlag)
	if token == "" {
		if env := strings.Split(os.Getenv(config.EnvToken), ","); len(env) > 0 {
			token = strings.TrimSpace(env[0])
		}
	}

	ctx, stop := interruptContext()
	defer stop()

	client := paths.NewTreeClient(paths.TreeOptions{Token: token}, logger)
	tree, err := client.Fetch(ctx, repo)
	if err != nil {
		logger.Error("%v", err)
		return
	}
	logger.Success("Successfully fetched repository tree")

	kind := "segments"
	if fullPaths {
		kind = "paths"
	}
	logger.Info("Processing %s...", kind)
	results := paths.Extract(tree, fullPaths)
	if len(results) == 0 {
		logger.Warn("No paths found in repository")
		return
	}
	logger.Success("Extracted %d unique %s", len(results), kind)

	out, err := core.NewOutput(outputFile, false, true)
	if err != nil {
		logger.Error("Error saving to file %s: %v", outputFile, err)
		return
	}
	for _, item := range results {
		out.WriteLine(item)
	}
	if err := out.Close(); err != nil {
		logger.Error("Error saving to file %s: %v", outputFile, err)
		return
	}
	logger.Success("Successfully saved %d lines to %s", len(results), outputFile)

	printPathStats(repo, results)
	logger.Success("Path extraction completed successfully!")
}

func printRunStats(res *search.Result) {
	s := res.Stats
	reporting.PrintTable(color.Output,
		[]string{"Pages", "Hits", "Files", "Duplicates", "Fetch errors", "Discarded tokens", "Rate limit waits", "Duration"},
		[][]string{{
			strconv.Itoa(s.Pages),
			strconv.Itoa(s.Hits),
			strconv.Itoa(s.FilesFetched),
			strconv.Itoa(s.Duplicates),
			strconv.Itoa(s.FetchErrors),
			strconv.Itoa(s.Discarded),
			strconv.Itoa(s.RateLimitWaits),
			res.Duration.Round(time.Millisecond).String(),
		}})
}

func printPathStats(repo paths.Repo, results []string) {
	fmt.Println()
	core.ColorYellow.Println("=== Extraction Statistics ===")
	core.ColorCyan.Printf("Repository: %s\n", repo)
	core.ColorCyan.Printf("Total items extracted: %d\n", len(results))

	sample := results
	if len(sample) > 10 {
		sample = sample[:10]
	}
	rows := make([][]string, 0, len(sample))
	for i, item := range sample {
		rows = append(rows, []string{strconv.Itoa(i + 1), item})
	}
	reporting.PrintTable(color.Output, []string{"#", "Sample"}, rows)
	if len(results) > 10 {
		fmt.Printf("  ... and %d more\n", len(results)-10)
	}
}

func openStore() (*config.Store, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.NewStore(path), nil
}

// interruptContext is cancelled on the first SIGINT/SIGTERM. A second signal
// gets the default behavior and kills the process.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// normalizeArgs rewrites the single-dash long flag -orb into --orb
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-orb" || strings.HasPrefix(a, "-orb=") {
			a = "-" + a
		}
		out[i] = a
	}
	return out
}

func main() {
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		color.Red("[-] Error: %v", err)
		os.Exit(1)
	}
}

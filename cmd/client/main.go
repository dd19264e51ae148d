package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"lostwatch/internal/models"
	"lostwatch/pkg/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	var (
		server string
		token  string
	)
	rootCmd := &cobra.Command{
		Use:   "lostwatch",
		Short: "Command line client for the lost watch registry",
	}
	rootCmd.PersistentFlags().StringVar(&server, "server", envOr("LOSTWATCH_SERVER", "http://localhost:8080"), "registry base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LOSTWATCH_TOKEN"), "bearer token for write and lookup routes")

	newClient := func() *client.Client { return client.NewClient(server, token) }

	rootCmd.AddCommand(reportCmd(newClient))
	rootCmd.AddCommand(listCmd(newClient))
	rootCmd.AddCommand(statsCmd(newClient))
	rootCmd.AddCommand(lookupCmd(newClient))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint("error: "), err)
		os.Exit(1)
	}
}

func reportCmd(newClient func() *client.Client) *cobra.Command {
	var (
		rep      client.Report
		lat, lng string
	)
	cmd := &cobra.Command{
		Use:   "report <lost|found> <serial>",
		Short: "File a lost or found report",
		Example: `  lostwatch report lost SN123 --email me@example.com
  lostwatch report found SN123 --email finder@example.com --lat 40.7 --lng -74.0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep.Status, rep.SerialNumber = args[0], args[1]
			if rep.DateReported == "" {
				rep.DateReported = models.TimeNow().Format(time.RFC3339)
			}
			var err error
			if rep.Latitude, err = optFloat(lat); err != nil {
				return fmt.Errorf("--lat: %w", err)
			}
			if rep.Longitude, err = optFloat(lng); err != nil {
				return fmt.Errorf("--lng: %w", err)
			}

			res, err := newClient().Submit(cmd.Context(), rep)
			if err != nil {
				return err
			}
			if !res.Matched {
				fmt.Printf("%s %s\n", color.New(color.FgBlue).Sprint("STORED "), res.Message)
				return nil
			}
			fmt.Printf("%s %s\n", color.New(color.FgGreen).Sprint("MATCHED"), res.Message)
			fmt.Printf("  finder: %s\n  owner:  %s\n", res.FinderContact, res.LoserContact)
			return nil
		},
	}
	cmd.Flags().StringVar(&rep.Email, "email", "", "contact e-mail (required)")
	cmd.Flags().StringVar(&rep.Model, "model", "", "watch model")
	cmd.Flags().StringVar(&rep.DateReported, "date", "", "date of loss or find, YYYY-MM-DD or RFC3339 (default now)")
	cmd.Flags().StringVar(&lat, "lat", "", "latitude")
	cmd.Flags().StringVar(&lng, "lng", "", "longitude")
	cmd.MarkFlagRequired("email")
	return cmd
}

func listCmd(newClient func() *client.Client) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active reports (no serials or contacts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := newClient().List(cmd.Context(), status)
			if err != nil {
				return err
			}
			if len(points) == 0 {
				fmt.Println("no active reports")
				return nil
			}
			for _, p := range points {
				fmt.Printf("%s  %s  %-20s %s\n", statusLabel(p.Status), p.DateReported.Format("2006-01-02"), p.Model, coords(p))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only lost or found")
	return cmd
}

func statsCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newClient().Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("lost:     %d\n", st.Lost)
			fmt.Printf("found:    %d\n", st.Found)
			fmt.Printf("reunited: %s\n", color.New(color.FgGreen).Sprint(st.Reunited))
			return nil
		},
	}
}

func lookupCmd(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <serial>",
		Short: "Check whether a watch has been reported found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newClient().Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.Match {
				fmt.Println(color.New(color.FgYellow).Sprint("no found report yet"))
				return nil
			}
			fmt.Printf("%s reported found on %s %s\n",
				color.New(color.FgGreen).Sprint("MATCH"),
				res.Report.DateReported.Format("2006-01-02"),
				coords(*res.Report))
			return nil
		},
	}
}

func statusLabel(s string) string {
	switch s {
	case "lost":
		return color.New(color.FgRed).Sprint("LOST ")
	case "found":
		return color.New(color.FgGreen).Sprint("FOUND")
	}
	return s
}

func coords(p client.MapPoint) string {
	if p.Latitude == nil || p.Longitude == nil {
		return ""
	}
	return fmt.Sprintf("(%.4f, %.4f)", *p.Latitude, *p.Longitude)
}

func optFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gover "github.com/hashicorp/go-version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// overwritten at build time with -ldflags
var (
	version = "0.0.0"
	commit  = "none"
	date    = "unknown"
)

const repoURL = "https://github.com/evelabs/evectl"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "show evectl version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("version: %s\n", version)
		fmt.Printf(" commit: %s\n", commit)
		fmt.Printf("   date: %s\n", date)
		fmt.Printf(" source: %s\n", repoURL)
	},
}

var versionCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "check if a newer evectl release is available",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()

		latest, err := latestReleaseVersion(ctx)
		if err != nil {
			log.Debugf("version check failed: %v", err)
			fmt.Println("could not reach the releases page; try again later")
			return nil
		}

		current, err := gover.NewVersion(version)
		if err != nil || latest.GreaterThan(current) {
			fmt.Printf("newer release %s is available at %s/releases\n", latest, repoURL)
			return nil
		}
		fmt.Println("you are on the latest version")
		return nil
	},
}

// latestReleaseVersion resolves the version the releases/latest redirect
// points at.
func latestReleaseVersion(ctx context.Context) (*gover.Version, error) {
	client := &http.Client{
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, repoURL+"/releases/latest", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	split := strings.Split(resp.Header.Get("Location"), "releases/tag/")
	if len(split) != 2 {
		return nil, fmt.Errorf("could not parse release tag from redirect")
	}
	return gover.NewVersion(strings.TrimPrefix(split[1], "v"))
}

func init() {
	versionCmd.AddCommand(versionCheckCmd)
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/nulzo/llm-relay/internal/httpclient"
)

// AppVersion is overridden at build time with -ldflags "-X".
var AppVersion = "v0.1.0"

var githubAPI = "https://api.github.com"

type GitHubRelease struct {
	TagName string `json:"tag_name"`
}

// CheckForUpdates compares AppVersion with the latest GitHub release of repo
// ("owner/name"). It reports the latest tag and whether it is newer.
func CheckForUpdates(ctx context.Context, client httpclient.HTTPClient, repo string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := fmt.Sprintf("%s/repos/%s/releases/latest", githubAPI, repo)
	body, err := httpclient.SendRequest(ctx, client, http.MethodGet, url, map[string]string{"Accept": "application/vnd.github+json"}, nil)
	if err != nil {
		return "", false, err
	}

	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", false, err
	}

	current, err := version.NewVersion(AppVersion)
	if err != nil {
		return "", false, fmt.Errorf("invalid build version %q: %w", AppVersion, err)
	}

	latest, err := version.NewVersion(release.TagName)
	if err != nil {
		return "", false, fmt.Errorf("invalid release tag %q: %w", release.TagName, err)
	}

	return release.TagName, current.LessThan(latest), nil
}

package eve

import (
	"context"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// CreateLab creates a lab file in the given folder (empty folder means the
// user's default one).
func (c *Client) CreateLab(ctx context.Context, name, folder string) error {
	if folder == "" {
		folder = c.DefaultFolder()
	}
	payload := map[string]string{
		"path":        folder,
		"name":        name,
		"version":     "1",
		"author":      c.cfg.Author,
		"description": c.cfg.Description,
		"body":        "",
	}
	env, err := c.doJSON(ctx, http.MethodPost, "/api/labs", payload)
	if err != nil {
		return fmt.Errorf("create lab %q: %w", name, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("create lab %q: %s", name, env.Message)
	}
	log.Infof("created lab %q in %s", name, folder)
	return nil
}

// DeleteLab removes a lab file.
func (c *Client) DeleteLab(ctx context.Context, name, folder string) error {
	env, err := c.do(ctx, http.MethodDelete, c.labPath(name, folder), nil,
		map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return fmt.Errorf("delete lab %q: %w", name, err)
	}
	if env.Status != "success" {
		return fmt.Errorf("delete lab %q: %s", name, env.Message)
	}
	log.Infof("deleted lab %q", name)
	return nil
}

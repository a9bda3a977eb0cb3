package hiboutik

import (
	"context"
	"fmt"

	"opossum/internal/services/hiboutik"
)

const (
	SaleWebhookAction = "sale"
	SaleWebhookLabel  = "Synchronisation des ventes avec Dokos"
)

// WebhookResult tells what SetSaleWebhook had to do.
type WebhookResult string

const (
	WebhookCreated   WebhookResult = "created"
	WebhookReplaced  WebhookResult = "replaced"
	WebhookUnchanged WebhookResult = "unchanged"
)

// SaleWebhook builds the webhook this connector registers for closed sales.
func SaleWebhook(url, appID string) hiboutik.Webhook {
	return hiboutik.Webhook{
		Label:    SaleWebhookLabel,
		URL:      url,
		Action:   SaleWebhookAction,
		AppIDInt: appID,
	}
}

// SetSaleWebhook makes sure exactly one sale webhook owned by webhook.AppIDInt
// exists remotely and that it points at webhook.URL.
func (sc *HiboutikConnector) SetSaleWebhook(ctx context.Context, webhook hiboutik.Webhook) (WebhookResult, error) {
	existing, err := sc.api.GetWebhooks(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list webhooks: %w", err)
	}

	var matches []hiboutik.Webhook
	for _, w := range existing {
		if w.AppIDInt == webhook.AppIDInt && w.Action == webhook.Action {
			matches = append(matches, w)
		}
	}

	if len(matches) == 0 {
		if err := sc.createWebhook(ctx, webhook); err != nil {
			return "", err
		}
		return WebhookCreated, nil
	}

	if len(matches) > 1 {
		sc.logger.Warn("Found %d %s webhooks for app %s, removing duplicates", len(matches), webhook.Action, webhook.AppIDInt)
		for _, extra := range matches[1:] {
			if err := sc.api.DeleteWebhook(ctx, extra.ID); err != nil {
				return "", fmt.Errorf("failed to delete duplicate webhook %d: %w", extra.ID, err)
			}
		}
	}

	current := matches[0]
	if current.URL == webhook.URL {
		sc.logger.Debug("Webhook %d already points to %s", current.ID, webhook.URL)
		return WebhookUnchanged, nil
	}

	if err := sc.api.DeleteWebhook(ctx, current.ID); err != nil {
		return "", fmt.Errorf("failed to delete webhook %d: %w", current.ID, err)
	}
	if err := sc.createWebhook(ctx, webhook); err != nil {
		return "", err
	}
	sc.logger.Info("Replaced webhook %d (%s) with %s", current.ID, current.URL, webhook.URL)
	return WebhookReplaced, nil
}

func (sc *HiboutikConnector) createWebhook(ctx context.Context, webhook hiboutik.Webhook) error {
	id, err := sc.api.PostWebhook(ctx, webhook)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	sc.logger.Info("Created %s webhook %d pointing to %s", webhook.Action, id, webhook.URL)
	return nil
}

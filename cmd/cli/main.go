package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/txledger/internal/infrastructure/auth"
)

const idempotencyKeyHeader = "Idempotency-Key"

// options are shared by every command.
type options struct {
	baseURL    string
	timeout    time.Duration
	token      string
	maxRetries uint64
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "txledger-cli",
		Short:         "txledger CLI tool",
		Long:          `A command line interface for interacting with the txledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the txledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("TXLEDGER_TOKEN"), "Bearer token for authenticated deployments")
	rootCmd.PersistentFlags().Uint64Var(&opts.maxRetries, "retries", 3, "Retries for transient failures")

	rootCmd.AddCommand(accountsCmd(opts), transactionsCmd(opts), ledgerCmd(opts), tokenCmd())

	return rootCmd
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var document, key string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"document_number": document}
			return newClient(opts).post(cmd.Context(), cmd.OutOrStdout(), "/api/v1/accounts", keyOrNew(key), body)
		},
	}
	createCmd.Flags().StringVar(&document, "document", "", "Owner document number")
	createCmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")
	_ = createCmd.MarkFlagRequired("document")

	getCmd := &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			return newClient(opts).get(cmd.Context(), cmd.OutOrStdout(), "/api/v1/accounts/"+args[0])
		},
	}

	cmd.AddCommand(createCmd, getCmd)
	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Transaction operations",
	}

	var (
		accountID   int64
		operationID int
		amount      string
		key         string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Record a transaction",
		Long: `Record a transaction. Operation types: 1 CASH_PURCHASE, 2 INSTALLMENT_PURCHASE,
3 WITHDRAWAL, 4 PAYMENT. Transient failures are retried with the same idempotency key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"account_id":        accountID,
				"operation_type_id": operationID,
				"amount":            amount,
			}
			return newClient(opts).post(cmd.Context(), cmd.OutOrStdout(), "/api/v1/transactions", keyOrNew(key), body)
		},
	}
	createCmd.Flags().Int64Var(&accountID, "account", 0, "Account id")
	createCmd.Flags().IntVar(&operationID, "operation", 0, "Operation type id")
	createCmd.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 123.45")
	createCmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency key (generated when empty)")
	_ = createCmd.MarkFlagRequired("account")
	_ = createCmd.MarkFlagRequired("operation")
	_ = createCmd.MarkFlagRequired("amount")

	cmd.AddCommand(createCmd)
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(opts).get(cmd.Context(), cmd.OutOrStdout(), "/api/v1/ledger/consistency")
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an authenticated deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(subject, "ledger")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().StringVar(&subject, "subject", "txledger-cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func keyOrNew(key string) string {
	if key != "" {
		return key
	}
	return ulid.Make().String()
}

// apiError is a non-2xx response.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.status, strings.TrimSpace(e.body))
}

type client struct {
	opts *options
	http *http.Client
}

func newClient(opts *options) *client {
	return &client{opts: opts, http: &http.Client{Timeout: opts.timeout}}
}

func (c *client) get(ctx context.Context, out io.Writer, path string) error {
	return c.do(ctx, out, http.MethodGet, path, "", nil)
}

func (c *client) post(ctx context.Context, out io.Writer, path, key string, body any) error {
	return c.do(ctx, out, http.MethodPost, path, key, body)
}

// do sends the request, retrying 503 responses and connection failures with
// exponential backoff. POSTs are retried with the same idempotency key.
func (c *client) do(ctx context.Context, out io.Writer, method, path, key string, body any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	var respBody []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.opts.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set(idempotencyKeyHeader, key)
		}
		if c.opts.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusServiceUnavailable:
			return &apiError{status: resp.StatusCode, body: string(data)}
		case resp.StatusCode >= 300:
			return backoff.Permanent(&apiError{status: resp.StatusCode, body: string(data)})
		}

		respBody = data
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = c.opts.timeout * time.Duration(c.opts.maxRetries+1)
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, c.opts.maxRetries), ctx)

	if err := backoff.Retry(operation, retry); err != nil {
		return err
	}

	return printJSON(out, respBody)
}

func printJSON(out io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	_, err := fmt.Fprintln(out, buf.String())
	return err
}

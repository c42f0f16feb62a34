// internal/app/runner.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-assets/internal/assets"
	"github.com/rovshanmuradov/solana-assets/internal/config"
	"github.com/rovshanmuradov/solana-assets/internal/logger"
	solclient "github.com/rovshanmuradov/solana-assets/internal/solana"
	"github.com/rovshanmuradov/solana-assets/internal/solana/transaction"
	"github.com/rovshanmuradov/solana-assets/internal/storage/irys"
	"github.com/rovshanmuradov/solana-assets/internal/wallet"
)

// Runner wires the RPC pool, the transaction manager, the storage client and
// the asset service together and dispatches one CLI command per invocation.
type Runner struct {
	logger        *logger.Logger
	config        *config.Config
	solClient     *solclient.Client
	txManager     *transaction.Manager
	storage       *irys.Client
	service       *assets.Service
	wallets       map[string]*wallet.Wallet
	defaultWallet *wallet.Wallet
	shutdownCh    chan os.Signal
}

func NewRunner(cfg *config.Config, log *logger.Logger) (*Runner, error) {
	wallets, err := wallet.LoadWallets(cfg.WalletsFile)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}

	defaultWallet, ok := wallets["default"]
	if !ok {
		for _, w := range wallets {
			defaultWallet = w
			break
		}
	}
	if defaultWallet == nil {
		return nil, fmt.Errorf("wallet file %s contains no usable wallets", cfg.WalletsFile)
	}

	solClient, err := solclient.NewClient(cfg.RPCList, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect RPC pool: %w", err)
	}

	txManager := transaction.NewManager(solClient, log.Logger, transaction.DefaultConfig())

	storage, err := irys.NewClient(irys.OptionsFromConfig(cfg), txManager, solClient, defaultWallet, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("build storage client: %w", err)
	}

	return &Runner{
		logger:        log,
		config:        cfg,
		solClient:     solClient,
		txManager:     txManager,
		storage:       storage,
		service:       assets.NewService(solClient, txManager, storage, log.Logger),
		wallets:       wallets,
		defaultWallet: defaultWallet,
		shutdownCh:    make(chan os.Signal, 1),
	}, nil
}

// Run executes one command and returns when it finishes or the process is
// signalled.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n\n%s", usage())
	}

	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case sig := <-r.shutdownCh:
			r.logger.Info("signal received, cancelling", zap.String("signal", sig.String()))
			cancel()
		case <-runCtx.Done():
		}
	}()

	command, rest := args[0], args[1:]
	switch command {
	case "cost":
		return r.runCost(runCtx, rest)
	case "upload-file":
		return r.runUploadFile(runCtx, rest)
	case "upload-metadata":
		return r.runUploadMetadata(runCtx, rest)
	case "launch":
		return r.runLaunch(runCtx, rest)
	case "burn":
		return r.runBurn(runCtx, rest)
	case "distribute":
		return r.runDistribute(runCtx, rest)
	case "transfer":
		return r.runTransfer(runCtx, rest)
	case "liquidate":
		return r.runLiquidate(runCtx, rest)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage())
	}
}

func (r *Runner) runCost(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cost <bytes>")
	}
	size, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid byte count %q: %w", args[0], err)
	}

	quote, err := r.storage.GetUploadCost(ctx, size)
	if err != nil {
		return err
	}

	fmt.Println(renderField("size", fmt.Sprintf("%d bytes", quote.DataSize)))
	fmt.Println(renderField("cost", fmt.Sprintf("%d lamports", quote.Cost)))
	return nil
}

func (r *Runner) runUploadFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: upload-file <path>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	result := r.storage.UploadImage(ctx, data, http.DetectContentType(data))
	fmt.Println(renderUploadResult(result))
	return nil
}

func (r *Runner) runUploadMetadata(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: upload-metadata <path.json>")
	}
	doc, err := readJSONDocument(args[0])
	if err != nil {
		return err
	}

	result := r.storage.UploadMetadata(ctx, doc)
	fmt.Println(renderUploadResult(result))
	return nil
}

func (r *Runner) runLaunch(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return fmt.Errorf("usage: launch <name> <symbol> <decimals> <supply> [image-path]")
	}

	decimals, err := strconv.ParseUint(args[2], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid decimals %q: %w", args[2], err)
	}
	supply, err := strconv.ParseUint(args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid supply %q: %w", args[3], err)
	}

	params := assets.LaunchParams{
		Name:          args[0],
		Symbol:        args[1],
		Decimals:      uint8(decimals),
		InitialSupply: supply,
	}
	if len(args) == 5 {
		image, err := os.ReadFile(args[4])
		if err != nil {
			return fmt.Errorf("read image %s: %w", args[4], err)
		}
		params.ImageBytes = image
		params.ImageContentType = http.DetectContentType(image)
	}

	receipt, err := r.service.Launch(ctx, r.defaultWallet, params)
	if err != nil {
		return err
	}

	fmt.Println(renderField("mint", receipt.Mint.String()))
	if receipt.ImageURI != "" {
		fmt.Println(renderField("image", receipt.ImageURI))
	}
	fmt.Println(renderField("metadata", receipt.MetadataURI))
	fmt.Println(renderSignatures("token launched", []string{receipt.Signature}))
	return nil
}

func (r *Runner) runBurn(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: burn <mint> <amount>")
	}
	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid mint %q: %w", args[0], err)
	}
	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	sig, err := r.service.Burn(ctx, r.defaultWallet, mint, amount)
	if err != nil {
		return err
	}
	fmt.Println(renderSignatures("tokens burned", []string{sig}))
	return nil
}

func (r *Runner) runDistribute(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: distribute <mint> <amount-each> <recipient> [recipient...]")
	}
	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid mint %q: %w", args[0], err)
	}
	amountEach, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	recipients := make([]solana.PublicKey, 0, len(args)-2)
	for _, raw := range args[2:] {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return fmt.Errorf("invalid recipient %q: %w", raw, err)
		}
		recipients = append(recipients, pk)
	}

	result, err := r.service.Distribute(ctx, r.defaultWallet, mint, recipients, amountEach)
	if err != nil {
		return err
	}

	signatures := make([]string, 0, len(result.Signatures))
	for recipient, sig := range result.Signatures {
		signatures = append(signatures, fmt.Sprintf("%s -> %s", recipient, sig))
	}
	fmt.Println(renderSignatures(fmt.Sprintf("distributed to %d recipients", len(signatures)), signatures))
	return nil
}

func (r *Runner) runTransfer(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: transfer <mint> <amount> <wallet-name> <wallet-name> [wallet-name...]")
	}
	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid mint %q: %w", args[0], err)
	}
	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	route := make([]*wallet.Wallet, 0, len(args)-2)
	for _, name := range args[2:] {
		w, ok := r.wallets[name]
		if !ok {
			return fmt.Errorf("unknown wallet %q (have: %s)", name, strings.Join(r.walletNames(), ", "))
		}
		route = append(route, w)
	}

	signatures, err := r.service.MultiHopTransfer(ctx, route, mint, amount)
	if err != nil {
		return err
	}
	fmt.Println(renderSignatures(fmt.Sprintf("transferred through %d hops", len(signatures)), signatures))
	return nil
}

func (r *Runner) runLiquidate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: liquidate <destination> <mint> [mint...]")
	}
	destination, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", args[0], err)
	}

	mints := make([]solana.PublicKey, 0, len(args)-1)
	for _, raw := range args[1:] {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return fmt.Errorf("invalid mint %q: %w", raw, err)
		}
		mints = append(mints, pk)
	}

	signatures, err := r.service.Liquidate(ctx, r.defaultWallet, mints, destination)
	if len(signatures) > 0 {
		fmt.Println(renderSignatures(fmt.Sprintf("liquidated %d accounts", len(signatures)), signatures))
	}
	return err
}

// readJSONDocument parses the file up front so a malformed document fails
// before any node is priced or funded.
func readJSONDocument(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func (r *Runner) walletNames() []string {
	names := make([]string, 0, len(r.wallets))
	for name := range r.wallets {
		names = append(names, name)
	}
	return names
}

// Shutdown flushes pending log entries. Sync errors on stdout/stderr are
// expected on most terminals and are not reported.
func (r *Runner) Shutdown() {
	r.logger.Info("shutting down")
	if err := r.logger.Sync(); err != nil {
		if !os.IsNotExist(err) &&
			!strings.Contains(err.Error(), "invalid argument") &&
			!strings.Contains(err.Error(), "inappropriate ioctl") {
			fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
		}
	}
}

func usage() string {
	return strings.TrimSpace(`
commands:
  cost <bytes>                                          price an upload of the given size
  upload-file <path>                                    upload a file and verify availability
  upload-metadata <path.json>                           upload a JSON document
  launch <name> <symbol> <decimals> <supply> [image]    create and mint a new token
  burn <mint> <amount>                                  burn tokens from the default wallet
  distribute <mint> <amount-each> <recipient...>        send tokens to many recipients
  transfer <mint> <amount> <wallet> <wallet...>         route tokens through named wallets
  liquidate <destination> <mint...>                     burn balances and close token accounts
`)
}

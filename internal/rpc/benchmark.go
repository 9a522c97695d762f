package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

// maxParallelProbes bounds concurrent endpoint probes.
const maxParallelProbes = 8

// Probe dials url and measures the round trip of eth_blockNumber.
func Probe(ctx context.Context, url string, timeout time.Duration) Endpoint {
	ep := Endpoint{URL: url, Checked: true}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		ep.Err = fmt.Errorf("dial %s: %w", url, err)
		return ep
	}
	defer client.Close()

	start := time.Now()
	block, err := client.BlockNumber(ctx)
	ep.Latency = time.Since(start)
	if err != nil {
		ep.Err = fmt.Errorf("block number from %s: %w", url, err)
		return ep
	}
	ep.BlockNumber = block
	ep.Healthy = true
	return ep
}

// Benchmark probes every URL in parallel. Results keep the input order.
func Benchmark(ctx context.Context, urls []string, timeout time.Duration) []Endpoint {
	results := make([]Endpoint, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelProbes)
	for i, url := range urls {
		g.Go(func() error {
			results[i] = Probe(ctx, url, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Select picks the endpoint URL to dial. A single URL is returned without
// probing.
func Select(ctx context.Context, urls []string, algo Algorithm, timeout time.Duration) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	if algo == "" {
		algo = AlgorithmFastest
	}

	winner, err := NewPicker(algo).Pick(Benchmark(ctx, urls, timeout))
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}

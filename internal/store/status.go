package store

import (
	"fmt"
)

// Status collects the operator summary of the pipeline.
func (t *Tx) Status() (*Status, error) {
	status := &Status{MinWatermarks: make(map[string]int64, len(AllPurposes))}

	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM monitored_addresses WHERE kind = 'safe'`, &status.MonitoredSafes},
		{`SELECT COUNT(*) FROM monitored_addresses WHERE kind = 'proxy_factory'`, &status.ProxyFactories},
		{`SELECT COUNT(*) FROM blocks WHERE confirmed = 0`, &status.UnconfirmedBlocks},
		{`SELECT COUNT(*) FROM decoded_elements WHERE processed = 0`, &status.PendingElements},
		{`SELECT COUNT(*) FROM decoded_elements WHERE replay_error IS NOT NULL`, &status.FailedElements},
		{`SELECT COUNT(*) FROM wallet_last_status`, &status.WalletsWithStatus},
	}
	for _, c := range counts {
		if err := t.q.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to collect status: %w", err)
		}
	}

	for _, purpose := range AllPurposes {
		col, _ := purpose.column()
		var minBlock *int64
		if err := t.q.QueryRow(fmt.Sprintf(`SELECT MIN(%s) FROM monitored_addresses`, col)).Scan(&minBlock); err != nil {
			return nil, fmt.Errorf("failed to collect watermarks: %w", err)
		}
		if minBlock != nil {
			status.MinWatermarks[col] = *minBlock
		}
	}

	latest, err := t.LatestBlockNumber()
	if err != nil {
		return nil, err
	}
	status.LatestBlock = latest

	return status, nil
}

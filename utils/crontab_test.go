package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCronEntry(t *testing.T) {
	entry := "0 2 * * * /usr/local/bin/n8n-backup.sh"

	tests := []struct {
		name    string
		current string
		want    string
	}{
		{
			"empty crontab",
			"",
			"0 2 * * * /usr/local/bin/n8n-backup.sh\n",
		},
		{
			"existing unrelated entries are preserved",
			"30 1 * * * /usr/bin/certwatch\n",
			"30 1 * * * /usr/bin/certwatch\n0 2 * * * /usr/local/bin/n8n-backup.sh\n",
		},
		{
			"entry already present is not duplicated",
			"0 2 * * * /usr/local/bin/n8n-backup.sh\n",
			"0 2 * * * /usr/local/bin/n8n-backup.sh\n",
		},
		{
			"entry present among others is not duplicated",
			"30 1 * * * /usr/bin/certwatch\n0 2 * * * /usr/local/bin/n8n-backup.sh\n",
			"30 1 * * * /usr/bin/certwatch\n0 2 * * * /usr/local/bin/n8n-backup.sh\n",
		},
		{
			"blank lines are dropped",
			"\n30 1 * * * /usr/bin/certwatch\n\n",
			"30 1 * * * /usr/bin/certwatch\n0 2 * * * /usr/local/bin/n8n-backup.sh\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeCronEntry(tt.current, entry))
		})
	}
}

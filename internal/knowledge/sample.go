package knowledge

import (
	"time"

	"github.com/kitehq/kite/internal/index"
)

// SampleDocuments returns the seed corpus used by the demo deployment
// and the test suite. IDs are stable so reseeding is idempotent.
func SampleDocuments() []index.Document {
	now := time.Now().UTC()
	docs := []index.Document{
		{
			ID:           "kb_001",
			Title:        "Network Troubleshooting Guide",
			Content:      "Network connectivity issues can be resolved by checking physical connections, verifying IP configuration, testing DNS resolution, and examining firewall rules. Common tools include ping, traceroute, nslookup, and netstat.",
			Category:     "Network",
			DocumentType: "procedure",
			Tags:         []string{"network", "troubleshooting", "connectivity"},
		},
		{
			ID:           "kb_002",
			Title:        "Database Connection Timeout Resolution",
			Content:      "Database connection timeouts typically occur due to connection pool exhaustion, long-running queries, or network latency. Increase connection timeout values, optimize queries, and monitor connection pool usage.",
			Category:     "Database",
			DocumentType: "troubleshooting",
			Tags:         []string{"database", "timeout", "performance"},
		},
		{
			ID:           "kb_003",
			Title:        "Email Server Configuration",
			Content:      "Email server setup requires configuring SMTP, IMAP/POP3 settings, setting up DNS MX records, implementing security protocols like SPF, DKIM, and DMARC, and configuring anti-spam measures.",
			Category:     "Email",
			DocumentType: "configuration",
			Tags:         []string{"email", "smtp", "configuration"},
		},
		{
			ID:           "kb_004",
			Title:        "Security Incident Response Playbook",
			Content:      "Security incident response involves immediate containment, evidence preservation, threat analysis, communication to stakeholders, remediation steps, and post-incident review. Follow the incident severity matrix for escalation.",
			Category:     "Security",
			DocumentType: "playbook",
			Tags:         []string{"security", "incident", "response"},
		},
		{
			ID:           "kb_005",
			Title:        "Backup and Recovery Procedures",
			Content:      "Implement 3-2-1 backup strategy: 3 copies of data, 2 different media types, 1 offsite backup. Test backup integrity regularly, document recovery procedures, and maintain recovery time objectives (RTO) and recovery point objectives (RPO).",
			Category:     "Backup",
			DocumentType: "procedure",
			Tags:         []string{"backup", "recovery", "disaster"},
		},
		{
			ID:           "kb_006",
			Title:        "Load Balancer Configuration",
			Content:      "Configure load balancer health checks, set up backend server pools, implement SSL termination, configure session persistence, and monitor traffic distribution. Use weighted routing for gradual traffic shifts.",
			Category:     "Infrastructure",
			DocumentType: "configuration",
			Tags:         []string{"load-balancer", "infrastructure", "scaling"},
		},
		{
			ID:           "kb_007",
			Title:        "API Rate Limiting Implementation",
			Content:      "Implement rate limiting using token bucket or sliding window algorithms. Configure limits per user, IP, or API key. Return HTTP 429 status codes when limits exceeded. Monitor rate limit metrics.",
			Category:     "API",
			DocumentType: "implementation",
			Tags:         []string{"api", "rate-limiting", "performance"},
		},
		{
			ID:           "kb_008",
			Title:        "Container Orchestration Best Practices",
			Content:      "Use resource limits and requests, implement health checks, configure rolling updates, use secrets management, implement proper logging, and monitor container metrics. Follow the principle of least privilege.",
			Category:     "Containers",
			DocumentType: "best-practices",
			Tags:         []string{"containers", "kubernetes", "orchestration"},
		},
	}
	for i := range docs {
		docs[i].CreatedAt = now
		docs[i].UpdatedAt = now
	}
	return docs
}

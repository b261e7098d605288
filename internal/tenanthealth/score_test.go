package tenanthealth

import "testing"

func TestScore(t *testing.T) {
	cases := []struct {
		name         string
		users, open  int
		tenantStatus string
		wantScore    float64
		wantStatus   string
	}{
		{"quiet tenant", 10, 0, "active", 100, StatusHealthy},
		{"some tickets", 10, 3, "active", 85, StatusHealthy},
		{"many tickets", 10, 8, "active", 60, StatusDegraded},
		{"ticket cap", 10, 40, "active", 50, StatusDegraded},
		{"no users", 0, 0, "trial", 70, StatusDegraded},
		{"no users many tickets", 0, 20, "active", 20, StatusCritical},
		{"suspended", 10, 0, "suspended", 20, StatusCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, status := Score(tc.users, tc.open, tc.tenantStatus)
			if score != tc.wantScore || status != tc.wantStatus {
				t.Errorf("Score(%d, %d, %q) = %v, %q; want %v, %q",
					tc.users, tc.open, tc.tenantStatus, score, status, tc.wantScore, tc.wantStatus)
			}
		})
	}
}

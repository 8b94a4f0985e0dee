package handlers

import (
	"net/http"
	"time"

	"water-delivery-api/config"
	"water-delivery-api/models"

	"github.com/gin-gonic/gin"
)

// AdminDashboard aggregates order status counts, revenue and open work
func AdminDashboard(c *gin.Context) {
	var orders []models.Order
	config.DB.Find(&orders)

	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.TotalPrice
		}
	}

	var customers, workers, pendingIssues int64
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&customers)
	config.DB.Model(&models.User{}).Where("role = ?", models.RoleWorker).Count(&workers)
	config.DB.Model(&models.Issue{}).Where("status = ?", models.IssuePending).Count(&pendingIssues)

	c.JSON(http.StatusOK, gin.H{
		"order_summary":  summary,
		"total_revenue":  totalRevenue,
		"total_orders":   len(orders),
		"customers":      customers,
		"workers":        workers,
		"pending_issues": pendingIssues,
	})
}

// AdminReports serves the read-side aggregations:
// ?type=revenue|workers|inventory, with optional from/to (YYYY-MM-DD).
func AdminReports(c *gin.Context) {
	switch c.DefaultQuery("type", "revenue") {
	case "revenue":
		revenueReport(c)
	case "workers":
		workerReport(c)
	case "inventory":
		inventoryReport(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown report type. Must be: revenue, workers, or inventory"})
	}
}

func dateRange(c *gin.Context) (from, to time.Time, ok bool) {
	const layout = "2006-01-02"
	from = time.Time{}
	to = time.Now().AddDate(0, 0, 1)
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(layout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date, expected YYYY-MM-DD"})
			return from, to, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(layout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date, expected YYYY-MM-DD"})
			return from, to, false
		}
		to = t.AddDate(0, 0, 1) // inclusive upper bound
	}
	return from, to, true
}

func revenueReport(c *gin.Context) {
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	base := config.DB.Model(&models.Order{}).
		Where("status = ? AND delivered_at >= ? AND delivered_at < ?",
			models.StatusDelivered, from, to)

	if c.Query("group") == "day" {
		var rows []struct {
			Day     string  `json:"day"`
			Revenue float64 `json:"revenue"`
			Orders  int64   `json:"orders"`
		}
		base.Select("date(delivered_at) as day, sum(total_price) as revenue, count(*) as orders").
			Group("date(delivered_at)").
			Order("day asc").
			Scan(&rows)
		c.JSON(http.StatusOK, gin.H{"report": "revenue", "by_day": rows})
		return
	}

	var out struct {
		Revenue float64 `json:"revenue"`
		Orders  int64   `json:"orders"`
	}
	base.Select("coalesce(sum(total_price), 0) as revenue, count(*) as orders").Scan(&out)
	c.JSON(http.StatusOK, gin.H{"report": "revenue", "revenue": out.Revenue, "orders": out.Orders})
}

// workerReport computes per-worker delivered count, on-time rate (delivered
// within 2 hours of creation) and average rating. Totals are recomputed on
// demand from the stored orders; nothing is cached.
func workerReport(c *gin.Context) {
	var workers []models.User
	config.DB.Where("role = ?", models.RoleWorker).Order("id asc").Find(&workers)

	type row struct {
		WorkerID   uint    `json:"worker_id"`
		Name       string  `json:"name"`
		Delivered  int     `json:"delivered"`
		OnTimeRate float64 `json:"on_time_rate"`
		AvgRating  float64 `json:"avg_rating"`
	}
	rows := make([]row, 0, len(workers))

	for _, w := range workers {
		var orders []models.Order
		config.DB.Where("worker_id = ? AND status = ?", w.ID, models.StatusDelivered).Find(&orders)

		onTime := 0
		for _, o := range orders {
			if o.DeliveredAt != nil && o.DeliveredAt.Sub(o.CreatedAt) <= 2*time.Hour {
				onTime++
			}
		}
		r := row{WorkerID: w.ID, Name: w.Name, Delivered: len(orders)}
		if len(orders) > 0 {
			r.OnTimeRate = float64(onTime) / float64(len(orders))
		}

		var avg struct{ Avg float64 }
		config.DB.Model(&models.Rating{}).
			Where("worker_id = ?", w.ID).
			Select("coalesce(avg(overall), 0) as avg").
			Scan(&avg)
		r.AvgRating = avg.Avg

		rows = append(rows, r)
	}

	c.JSON(http.StatusOK, gin.H{"report": "workers", "workers": rows})
}

func inventoryReport(c *gin.Context) {
	var rows []struct {
		Size     models.BottleSize       `json:"size"`
		Type     models.BottleReturnType `json:"type"`
		Quantity int64                   `json:"quantity"`
	}
	config.DB.Model(&models.BottleReturn{}).
		Select("size, type, sum(quantity) as quantity").
		Group("size, type").
		Order("size asc").
		Scan(&rows)
	c.JSON(http.StatusOK, gin.H{"report": "inventory", "returns": rows})
}

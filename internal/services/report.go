package services

import "sales-dashboard/internal/models"

const DefaultExportTopN = 20

// Sheet is one named page of the summary workbook.
type Sheet struct {
	Name  string
	Build func(*models.Dataset) (models.Tabler, error)
}

func tabler[T models.Tabler](fn func(*models.Dataset) T) func(*models.Dataset) (models.Tabler, error) {
	return func(ds *models.Dataset) (models.Tabler, error) {
		return fn(ds), nil
	}
}

// ReportSheets lists the sheets of the full summary workbook in output order.
func ReportSheets(topN int) []Sheet {
	if topN <= 0 {
		topN = DefaultExportTopN
	}
	return []Sheet{
		{Name: "ByMonth", Build: tabler(MonthlyTrends)},
		{Name: "ByQuarter", Build: tabler(QuarterlyTrends)},
		{Name: "ByRegion", Build: tabler(RegionalBreakdown)},
		{Name: "ByCustomerType", Build: tabler(ByCustomerType)},
		{Name: "TopProducts", Build: func(ds *models.Dataset) (models.Tabler, error) {
			top, _, err := TopBottomProducts(ds, topN)
			return top, err
		}},
		{Name: "BottomProducts", Build: func(ds *models.Dataset) (models.Tabler, error) {
			_, bottom, err := TopBottomProducts(ds, topN)
			return bottom, err
		}},
		{Name: "Product×Month_Profit", Build: tabler(ProductMonthProfit)},
		{Name: "Region×Month_Sales", Build: tabler(RegionMonthSales)},
		{Name: "MarginsStats", Build: tabler(DescribeMargins)},
		{Name: "MonthlyGrowth", Build: tabler(MonthlyGrowth)},
		{Name: "DataDictionary", Build: tabler(DataDictionary)},
	}
}

// FindSheet looks up a report sheet by name.
func FindSheet(sheets []Sheet, name string) (Sheet, bool) {
	for _, s := range sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

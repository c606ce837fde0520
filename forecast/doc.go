// Package forecast is a client for the hosted renewable-energy forecasting
// model.
//
// The model answers a POST to /predict/ with a single numeric series. The
// client turns it into one Prediction per calendar day starting today:
//
//	client := forecast.NewClient()
//	resp := client.Fetch(ctx, forecast.Request{
//		Location:   "Assam, India",
//		Days:       3,
//		EnergyType: forecast.EnergySolar,
//	})
//	if !resp.Success {
//		log.Println(resp.Error)
//	}
//
// Only the solar column comes from the model. Wind is always zero, and the
// weather label and temperature are placeholder values that cycle weekly.
package forecast

// Cinematch - Collaborative Filtering Rating Predictor
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package pearson

// Neighbor is a profile together with its similarity to the query profile.
type Neighbor struct {
	Profile    Profile
	Similarity float64
}

// Prediction is the outcome of a rating prediction.
type Prediction struct {
	// Rating is the predicted rating, or 0 when OK is false.
	Rating float64 `json:"rating"`

	// Contributors is the number of neighbors that rated the movie.
	Contributors int `json:"contributors"`

	// Weight is the summed similarity of the contributors.
	Weight float64 `json:"weight"`

	// OK is false when no positive similarity weight was available.
	OK bool `json:"ok"`
}

// Similarity returns the cached similarity of a and b.
func (e *Engine) Similarity(a, b Profile) (float64, error) {
	ia, err := e.index(a)
	if err != nil {
		return 0, err
	}
	ib, err := e.index(b)
	if err != nil {
		return 0, err
	}
	return e.get(ia, ib), nil
}

// Neighbors returns every other profile whose similarity to p is strictly
// greater than threshold, in InternalID order.
func (e *Engine) Neighbors(p Profile, threshold float64) ([]Profile, error) {
	hood, err := e.Neighborhood(p, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, len(hood))
	for i, nb := range hood {
		out[i] = nb.Profile
	}
	return out, nil
}

// Neighborhood is Neighbors with the similarity of each neighbor attached.
func (e *Engine) Neighborhood(p Profile, threshold float64) ([]Neighbor, error) {
	ip, err := e.index(p)
	if err != nil {
		return nil, err
	}

	var out []Neighbor
	row := e.cells[ip*e.n : (ip+1)*e.n]
	for iq, sim := range row {
		if iq == ip || !(sim > threshold) {
			continue
		}
		out = append(out, Neighbor{Profile: e.profiles[iq], Similarity: sim})
	}
	return out, nil
}

// PredictRating predicts p's rating of m, returning 0 when no neighbor
// above threshold provides positive weight.
func (e *Engine) PredictRating(p Profile, m MovieID, threshold float64) (float64, error) {
	pred, err := e.Predict(p, m, threshold)
	if err != nil {
		return 0, err
	}
	return pred.Rating, nil
}

// Predict is PredictRating with the evidence behind the result.
func (e *Engine) Predict(p Profile, m MovieID, threshold float64) (Prediction, error) {
	hood, err := e.Neighborhood(p, threshold)
	if err != nil {
		return Prediction{}, err
	}

	return predictFrom(p, hood, m), nil
}

// predictFrom computes the mean-centered weighted average over hood.
func predictFrom(p Profile, hood []Neighbor, m MovieID) Prediction {
	var num, den float64
	contributors := 0
	for _, nb := range hood {
		q := nb.Profile
		if !q.HasRated(m) {
			continue
		}
		num += nb.Similarity * (q.RatingFor(m) - q.MeanRating())
		den += nb.Similarity
		contributors++
	}

	if den <= 0 {
		return Prediction{Contributors: contributors, Weight: den}
	}

	return Prediction{
		Rating:       p.MeanRating() + num/den,
		Contributors: contributors,
		Weight:       den,
		OK:           true,
	}
}

// PredictMany predicts p's rating for each movie in movies, selecting the
// neighborhood once. Results are positionally aligned with movies.
func (e *Engine) PredictMany(p Profile, movies []MovieID, threshold float64) ([]Prediction, error) {
	hood, err := e.Neighborhood(p, threshold)
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, len(movies))
	for i, m := range movies {
		out[i] = predictFrom(p, hood, m)
	}
	return out, nil
}

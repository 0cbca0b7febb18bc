package openai

import (
	"strings"

	"github.com/viant/toa/analyzer/oracle"
)

const systemPrompt = "You analyze function call relationships and potential sources of user input in Python code. " +
	"Reply with JSON only, without explanations or comments."

const userTemplate = `Function: {function}
Candidate callers: {callers}

Estimate, for each candidate caller, the probability that it passes user controllable input into {function}.
- Hardcoded values or constants indicate a low probability.
- Direct use of user input, for example input(), sys.argv, request data or environment variables, indicates a high probability.
- When a caller only forwards its parameters, consider where those parameters come from.
- Callers that merely call other functions without handling input should get lower probabilities.
Probabilities must sum to 1. Avoid extreme values unless the code is unambiguous.

Code context:

{context}

Respond with a JSON object of the form {"probabilities": {"<caller>": <probability>}} covering every candidate caller.`

func userPrompt(request *oracle.Request) string {
	replacer := strings.NewReplacer(
		"{function}", request.Function,
		"{callers}", "["+strings.Join(request.Callers, ", ")+"]",
		"{context}", request.Context,
	)
	return replacer.Replace(userTemplate)
}

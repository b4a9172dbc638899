package api

import "html/template"

var metricsPage = template.Must(template.New("metrics").Parse(`<!DOCTYPE html>
<html>
    <head>
        <title>Proxy Metrics</title>
        <style>
            body {
                font-family: 'Arial', sans-serif;
                margin: 0;
                padding: 0;
                background: linear-gradient(135deg, #74ebd5, #9face6);
                color: #333;
            }
            .container {
                max-width: 800px;
                margin: 50px auto;
                background: white;
                border-radius: 8px;
                box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
                overflow: hidden;
            }
            h1 {
                background: linear-gradient(to right, #00f2fe, #4facfe);
                color: white;
                padding: 20px;
                text-align: center;
                margin: 0;
            }
            p {
                font-size: 18px;
                padding: 20px;
                margin: 0;
                border-bottom: 1px solid #eee;
            }
            table {
                width: 100%;
                border-collapse: collapse;
            }
            th, td {
                padding: 15px;
                text-align: left;
            }
            th {
                background-color: #f4f4f4;
                font-weight: bold;
            }
            tr:nth-child(even) {
                background-color: #f9f9f9;
            }
        </style>
    </head>
    <body>
        <div class="container">
            <h1>Proxy Metrics</h1>
            <p><strong>Bandwidth Usage:</strong> {{.BandwidthUsage}} ({{.HumanBytes}})</p>
            <div>
                <table>
                    <thead>
                        <tr>
                            <th>URL</th>
                            <th>Visits</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{- range .Sites}}
                        <tr><td>{{.Host}}</td><td>{{.HumanVisits}}</td></tr>
                        {{- end}}
                    </tbody>
                </table>
            </div>
        </div>
    </body>
</html>
`))

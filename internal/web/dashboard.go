package web

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>DeepWork</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg-primary: #f4f6f8;
            --bg-secondary: #ffffff;
            --text-primary: #2e3440;
            --text-muted: #7b8794;
            --border-color: #e4e7eb;
            --accent-color: #2f80ed;
            --warn-color: #d9822b;
            --bar-color: rgba(47, 128, 237, 0.12);
            --shadow: rgba(0,0,0,0.08);
        }

        [data-theme="dark"] {
            --bg-primary: #16181d;
            --bg-secondary: #23262e;
            --text-primary: #e5e9f0;
            --text-muted: #9aa5b1;
            --border-color: #3b4048;
            --accent-color: #5aa1f2;
            --warn-color: #f0a35e;
            --bar-color: rgba(90, 161, 242, 0.18);
            --shadow: rgba(0,0,0,0.35);
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            padding: 20px;
        }

        .header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 24px;
        }

        .header-btn {
            background: var(--bg-secondary);
            color: var(--text-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 6px 12px;
            cursor: pointer;
        }

        .dashboard {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(300px, 1fr));
            gap: 16px;
        }

        .box {
            background: var(--bg-secondary);
            border-radius: 8px;
            padding: 18px;
            box-shadow: 0 2px 4px var(--shadow);
        }

        .box h2 {
            font-size: 1.1rem;
            color: var(--accent-color);
            border-bottom: 1px solid var(--border-color);
            padding-bottom: 8px;
            margin-bottom: 12px;
        }

        .timer { font-size: 3rem; font-variant-numeric: tabular-nums; margin: 8px 0; }
        .phase, .loading, .total { color: var(--text-muted); }
        .message { margin: 10px 0; }
        .override, .nudge { color: var(--warn-color); margin: 6px 0; }
        .controls { display: flex; flex-wrap: wrap; gap: 8px; margin-top: 12px; }
        .total { margin-top: 10px; font-size: 0.9rem; }

        .goal-item {
            display: flex;
            justify-content: space-between;
            padding: 6px 4px;
            border-bottom: 1px solid var(--border-color);
            background: linear-gradient(to right, var(--bar-color) var(--bar-width), transparent var(--bar-width));
        }

        .goal-time { font-weight: 600; margin-right: 8px; }
        .goal-percentage { color: var(--text-muted); }
    </style>
</head>
<body>
    <div class="header">
        <h1>DeepWork</h1>
        <button class="header-btn" onclick="toggleTheme()" title="Toggle theme">Theme</button>
    </div>
    <div class="dashboard">
        <div class="box">
            <h2>Current session</h2>
            <div id="live" hx-get="/api/live" hx-trigger="load, every 1s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>

        <div class="box">
            <h2>Today</h2>
            <div hx-get="/api/report?period=day" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>

        <div class="box">
            <h2>This Week</h2>
            <div hx-get="/api/report?period=week" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>

        <div class="box">
            <h2>This Month</h2>
            <div hx-get="/api/report?period=month" hx-trigger="load, every 30s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
    </div>
    <script>
        function setTheme(theme) {
            document.documentElement.setAttribute('data-theme', theme);
            localStorage.setItem('theme', theme);
        }

        function toggleTheme() {
            const current = document.documentElement.getAttribute('data-theme');
            setTheme(current === 'dark' ? 'light' : 'dark');
        }

        const prefersDark = window.matchMedia('(prefers-color-scheme: dark)').matches;
        setTheme(localStorage.getItem('theme') || (prefersDark ? 'dark' : 'light'));
    </script>
</body>
</html>`
